package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"civicreport/internal/models"
)

type MaintainerRepository struct {
	db *sql.DB
}

func NewMaintainerRepository(db *sql.DB) *MaintainerRepository {
	return &MaintainerRepository{db: db}
}

// Create inserts a new maintainer.
func (r *MaintainerRepository) Create(m *models.Maintainer) error {
	query := `
		INSERT INTO maintainers (name, email, password_hash, categories, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	categories := make([]string, len(m.Categories))
	for i, c := range m.Categories {
		categories[i] = string(c)
	}
	return r.db.QueryRow(query,
		m.Name,
		m.Email,
		m.PasswordHash,
		pq.Array(categories),
		m.Active,
	).Scan(&m.ID, &m.CreatedAt)
}

func scanMaintainer(row interface{ Scan(...any) error }) (*models.Maintainer, error) {
	var m models.Maintainer
	var categories []string
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		pq.Array(&categories),
		&m.Active,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Categories = make([]models.OfficeType, len(categories))
	for i, c := range categories {
		m.Categories[i] = models.OfficeType(c)
	}
	return &m, nil
}

const maintainerColumns = `id, name, email, password_hash, categories, active, created_at`

// GetByID retrieves a maintainer by id. Returns (nil, nil) when absent.
func (r *MaintainerRepository) GetByID(id uint) (*models.Maintainer, error) {
	query := `SELECT ` + maintainerColumns + ` FROM maintainers WHERE id = $1`
	m, err := scanMaintainer(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maintainer: %w", err)
	}
	return m, nil
}

// GetByEmail retrieves a maintainer by email. Returns (nil, nil) when absent.
func (r *MaintainerRepository) GetByEmail(email string) (*models.Maintainer, error) {
	query := `SELECT ` + maintainerColumns + ` FROM maintainers WHERE email = $1`
	m, err := scanMaintainer(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maintainer: %w", err)
	}
	return m, nil
}

func (r *MaintainerRepository) list(query string, args ...any) ([]models.Maintainer, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintainers: %w", err)
	}
	defer rows.Close()

	maintainers := []models.Maintainer{}
	for rows.Next() {
		m, err := scanMaintainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintainer: %w", err)
		}
		maintainers = append(maintainers, *m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maintainers: %w", err)
	}

	return maintainers, nil
}

// List returns all maintainers.
func (r *MaintainerRepository) List() ([]models.Maintainer, error) {
	return r.list(`SELECT ` + maintainerColumns + ` FROM maintainers ORDER BY name`)
}

// ListActiveByCategory returns active maintainers servicing a category,
// the candidates offered when binding a maintainer to a report.
func (r *MaintainerRepository) ListActiveByCategory(category models.OfficeType) ([]models.Maintainer, error) {
	query := `SELECT ` + maintainerColumns + ` FROM maintainers
		WHERE active AND $1 = ANY(categories) ORDER BY name`
	return r.list(query, string(category))
}

// Update replaces a maintainer's profile, category set and active flag.
func (r *MaintainerRepository) Update(m *models.Maintainer) error {
	query := `
		UPDATE maintainers SET name = $2, email = $3, categories = $4, active = $5
		WHERE id = $1
	`
	categories := make([]string, len(m.Categories))
	for i, c := range m.Categories {
		categories[i] = string(c)
	}
	result, err := r.db.Exec(query, m.ID, m.Name, m.Email, pq.Array(categories), m.Active)
	if err != nil {
		return fmt.Errorf("failed to update maintainer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a maintainer. Returns sql.ErrNoRows when absent.
func (r *MaintainerRepository) Delete(id uint) error {
	result, err := r.db.Exec(`DELETE FROM maintainers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maintainer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
