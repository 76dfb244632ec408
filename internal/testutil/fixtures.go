package testutil

import (
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"civicreport/internal/models"
)

// Fixtures holds a ready-made cast for lifecycle tests: a citizen author, a
// reviewing PR officer, a technical officer for the waste office and an
// active maintainer servicing it.
type Fixtures struct {
	DB         *sql.DB
	Citizen    *models.User
	PROfficer  *models.Officer
	Technician *models.Officer
	Maintainer *models.Maintainer
}

// SetupFixtures inserts the standard cast.
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{DB: db}
	f.Citizen = CreateUser(t, db, "citizen@test.local", "Carla", "Verdi")
	f.PROfficer = CreateOfficer(t, db, "pr@test.local", "Paola", "Rossi",
		[]models.OfficerPosition{{Office: models.OfficeOrganization, Role: models.RolePublicRelations}})
	f.Technician = CreateOfficer(t, db, "tech@test.local", "Teo", "Bianchi",
		[]models.OfficerPosition{{Office: models.OfficeWaste, Role: models.RoleTechnicalStaff}})
	f.Maintainer = CreateMaintainer(t, db, "ops@test.local", "CleanCo",
		[]models.OfficeType{models.OfficeWaste}, true)
	return f
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

// CreateUser inserts a citizen account with password "password".
func CreateUser(t *testing.T, db *sql.DB, email, firstName, lastName string) *models.User {
	t.Helper()

	user := &models.User{Email: email, FirstName: firstName, LastName: lastName}
	err := db.QueryRow(
		`INSERT INTO users (email, password_hash, first_name, last_name)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		email, hashPassword(t, "password"), firstName, lastName,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateOfficer inserts an officer with the given positions.
func CreateOfficer(t *testing.T, db *sql.DB, email, name, surname string, positions []models.OfficerPosition) *models.Officer {
	t.Helper()

	officer := &models.Officer{Name: name, Surname: surname, Email: email, Positions: positions}
	err := db.QueryRow(
		`INSERT INTO officers (name, surname, email, password_hash)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		name, surname, email, hashPassword(t, "password"),
	).Scan(&officer.ID, &officer.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create officer: %v", err)
	}
	for _, p := range positions {
		if _, err := db.Exec(
			`INSERT INTO officer_positions (officer_id, office, role) VALUES ($1, $2, $3)`,
			officer.ID, string(p.Office), string(p.Role),
		); err != nil {
			t.Fatalf("Failed to create officer position: %v", err)
		}
	}
	return officer
}

// CreateMaintainer inserts a maintainer.
func CreateMaintainer(t *testing.T, db *sql.DB, email, name string, categories []models.OfficeType, active bool) *models.Maintainer {
	t.Helper()

	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}
	maintainer := &models.Maintainer{Name: name, Email: email, Categories: categories, Active: active}
	err := db.QueryRow(
		`INSERT INTO maintainers (name, email, password_hash, categories, active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		name, email, hashPassword(t, "password"), pq.Array(cats), active,
	).Scan(&maintainer.ID, &maintainer.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create maintainer: %v", err)
	}
	return maintainer
}

// CreateReport inserts a pending report authored by the given user.
func CreateReport(t *testing.T, db *sql.DB, authorID uint, category models.OfficeType) *models.Report {
	t.Helper()

	report := &models.Report{
		Title:       "Overflowing bins",
		Description: "The bins on Via Roma have not been emptied for a week.",
		Category:    category,
		State:       models.StatePending,
		AuthorID:    &authorID,
		Latitude:    45.07,
		Longitude:   7.68,
		Photos:      []string{"photos/bins-1.jpg"},
	}
	err := db.QueryRow(
		`INSERT INTO reports (title, description, category, state, author_id, latitude, longitude, photos)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		report.Title, report.Description, string(report.Category), string(report.State),
		authorID, report.Latitude, report.Longitude, pq.Array(report.Photos),
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	return report
}
