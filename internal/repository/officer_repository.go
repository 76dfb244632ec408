package repository

import (
	"database/sql"
	"fmt"

	"civicreport/internal/models"
)

type OfficerRepository struct {
	db *sql.DB
}

func NewOfficerRepository(db *sql.DB) *OfficerRepository {
	return &OfficerRepository{db: db}
}

// Create inserts an officer together with its (office, role) positions.
func (r *OfficerRepository) Create(officer *models.Officer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO officers (name, surname, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(query,
		officer.Name,
		officer.Surname,
		officer.Email,
		officer.PasswordHash,
	).Scan(&officer.ID, &officer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create officer: %w", err)
	}

	if err := insertPositions(tx, officer.ID, officer.Positions); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPositions(tx *sql.Tx, officerID uint, positions []models.OfficerPosition) error {
	query := `INSERT INTO officer_positions (officer_id, office, role) VALUES ($1, $2, $3)`
	for _, p := range positions {
		if _, err := tx.Exec(query, officerID, p.Office, p.Role); err != nil {
			return fmt.Errorf("failed to insert officer position: %w", err)
		}
	}
	return nil
}

func (r *OfficerRepository) loadPositions(officerID uint) ([]models.OfficerPosition, error) {
	query := `SELECT office, role FROM officer_positions WHERE officer_id = $1 ORDER BY office, role`
	rows, err := r.db.Query(query, officerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query officer positions: %w", err)
	}
	defer rows.Close()

	positions := []models.OfficerPosition{}
	for rows.Next() {
		var p models.OfficerPosition
		if err := rows.Scan(&p.Office, &p.Role); err != nil {
			return nil, fmt.Errorf("failed to scan officer position: %w", err)
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// GetByID retrieves an officer with its positions. Returns (nil, nil) when
// absent.
func (r *OfficerRepository) GetByID(id uint) (*models.Officer, error) {
	var o models.Officer
	query := `SELECT id, name, surname, email, password_hash, created_at FROM officers WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&o.ID, &o.Name, &o.Surname, &o.Email, &o.PasswordHash, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get officer: %w", err)
	}

	o.Positions, err = r.loadPositions(o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByEmail retrieves an officer by email. Returns (nil, nil) when absent.
func (r *OfficerRepository) GetByEmail(email string) (*models.Officer, error) {
	var o models.Officer
	query := `SELECT id, name, surname, email, password_hash, created_at FROM officers WHERE email = $1`
	err := r.db.QueryRow(query, email).Scan(
		&o.ID, &o.Name, &o.Surname, &o.Email, &o.PasswordHash, &o.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get officer: %w", err)
	}

	o.Positions, err = r.loadPositions(o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all officers with their positions.
func (r *OfficerRepository) List() ([]models.Officer, error) {
	query := `SELECT id, name, surname, email, password_hash, created_at FROM officers ORDER BY surname, name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query officers: %w", err)
	}
	defer rows.Close()

	officers := []models.Officer{}
	for rows.Next() {
		var o models.Officer
		if err := rows.Scan(&o.ID, &o.Name, &o.Surname, &o.Email, &o.PasswordHash, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating officers: %w", err)
	}

	for i := range officers {
		officers[i].Positions, err = r.loadPositions(officers[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return officers, nil
}

// ListByPosition returns officers holding the given role within the given
// office. Used to offer assignment candidates for a report category.
func (r *OfficerRepository) ListByPosition(office models.OfficeType, role models.OfficerRole) ([]models.Officer, error) {
	query := `
		SELECT o.id, o.name, o.surname, o.email, o.password_hash, o.created_at
		FROM officers o
		JOIN officer_positions p ON p.officer_id = o.id
		WHERE p.office = $1 AND p.role = $2
		ORDER BY o.surname, o.name
	`
	rows, err := r.db.Query(query, office, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query officers by position: %w", err)
	}
	defer rows.Close()

	officers := []models.Officer{}
	for rows.Next() {
		var o models.Officer
		if err := rows.Scan(&o.ID, &o.Name, &o.Surname, &o.Email, &o.PasswordHash, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating officers: %w", err)
	}

	for i := range officers {
		officers[i].Positions, err = r.loadPositions(officers[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return officers, nil
}

// Update replaces an officer's profile and positions.
func (r *OfficerRepository) Update(officer *models.Officer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE officers SET name = $2, surname = $3, email = $4 WHERE id = $1`
	result, err := tx.Exec(query, officer.ID, officer.Name, officer.Surname, officer.Email)
	if err != nil {
		return fmt.Errorf("failed to update officer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(`DELETE FROM officer_positions WHERE officer_id = $1`, officer.ID); err != nil {
		return fmt.Errorf("failed to clear officer positions: %w", err)
	}
	if err := insertPositions(tx, officer.ID, officer.Positions); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes an officer. Live assignments must be reset by the caller
// before the row goes away.
func (r *OfficerRepository) Delete(id uint) error {
	result, err := r.db.Exec(`DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete officer: %w", err)
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
