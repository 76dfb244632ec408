package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"civicreport/internal/models"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `
	id, title, description, category, state, author_id, anonymity,
	latitude, longitude, address, photos, assigned_officer_id,
	assigned_maintainer_id, decline_reason, suspend_reason, created_at
`

func scanReport(row interface{ Scan(...any) error }) (*models.Report, error) {
	var r models.Report
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Category,
		&r.State,
		&r.AuthorID,
		&r.Anonymity,
		&r.Latitude,
		&r.Longitude,
		&r.Address,
		pq.Array(&r.Photos),
		&r.AssignedOfficerID,
		&r.AssignedMaintainerID,
		&r.DeclineReason,
		&r.SuspendReason,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new report in PENDING state.
func (r *ReportRepository) Create(report *models.Report) error {
	query := `
		INSERT INTO reports (
			title, description, category, state, author_id, anonymity,
			latitude, longitude, address, photos
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	report.State = models.StatePending
	return r.db.QueryRow(query,
		report.Title,
		report.Description,
		report.Category,
		report.State,
		report.AuthorID,
		report.Anonymity,
		report.Latitude,
		report.Longitude,
		report.Address,
		pq.Array(report.Photos),
	).Scan(&report.ID, &report.CreatedAt)
}

// GetByID retrieves a report by id. Returns (nil, nil) when absent.
func (r *ReportRepository) GetByID(id uint) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	report, err := scanReport(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (r *ReportRepository) list(query string, args ...any) ([]models.Report, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

// ListPublished returns every report that passed PR review, most recent
// first. This backs the public map.
func (r *ReportRepository) ListPublished() ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
		WHERE state NOT IN ($1, $2) ORDER BY created_at DESC`
	return r.list(query, models.StatePending, models.StateDeclined)
}

// ListByState returns reports currently in the given state.
func (r *ReportRepository) ListByState(state models.ReportState) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE state = $1 ORDER BY created_at`
	return r.list(query, state)
}

// ListByCategory returns reports in a category, the officer inbox view.
func (r *ReportRepository) ListByCategory(category models.OfficeType) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE category = $1 ORDER BY created_at`
	return r.list(query, category)
}

// ListByAuthor returns the reports a citizen submitted.
func (r *ReportRepository) ListByAuthor(authorID uint) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE author_id = $1 ORDER BY created_at DESC`
	return r.list(query, authorID)
}

// ListByAssignedOfficer returns the reports bound to an officer.
func (r *ReportRepository) ListByAssignedOfficer(officerID uint) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE assigned_officer_id = $1 ORDER BY created_at`
	return r.list(query, officerID)
}

// ListByAssignedMaintainer returns the reports bound to a maintainer.
func (r *ReportRepository) ListByAssignedMaintainer(maintainerID uint) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE assigned_maintainer_id = $1 ORDER BY created_at`
	return r.list(query, maintainerID)
}

// Transition moves a report from one state to another as a single
// conditional update. The from state is part of the WHERE clause, so two
// racing callers cannot both win: the loser sees false and must re-read.
// The reason lands in decline_reason or suspend_reason depending on the
// target state; leaving SUSPENDED always clears suspend_reason.
func (r *ReportRepository) Transition(id uint, from, to models.ReportState, reason *string) (bool, error) {
	query := `
		UPDATE reports SET
			state = $3,
			decline_reason = CASE WHEN $3 = 'DECLINED' THEN $4 ELSE decline_reason END,
			suspend_reason = CASE WHEN $3 = 'SUSPENDED' THEN $4 ELSE NULL END
		WHERE id = $1 AND state = $2
	`
	result, err := r.db.Exec(query, id, from, to, reason)
	if err != nil {
		return false, fmt.Errorf("failed to transition report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// AssignOfficer binds an officer and advances the report to
// ASSIGNED_AWAITING_MAINTAINER, conditional on the expected current state.
func (r *ReportRepository) AssignOfficer(id, officerID uint, from models.ReportState) (bool, error) {
	query := `
		UPDATE reports SET assigned_officer_id = $2, state = $4
		WHERE id = $1 AND state = $3
	`
	result, err := r.db.Exec(query, id, officerID, from, models.StateAwaitingMaintainer)
	if err != nil {
		return false, fmt.Errorf("failed to assign officer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// AssignMaintainer binds (or rebinds) a maintainer. Only reports that
// already have an officer and are not terminal qualify; when the report was
// still awaiting a maintainer the state advances to ASSIGNED_WITH_MAINTAINER,
// operational states keep their state.
func (r *ReportRepository) AssignMaintainer(id, maintainerID uint) (bool, error) {
	query := `
		UPDATE reports SET
			assigned_maintainer_id = $2,
			state = CASE WHEN state = $3 THEN $4 ELSE state END
		WHERE id = $1 AND state IN ($3, $4, $5, $6)
	`
	result, err := r.db.Exec(query, id, maintainerID,
		models.StateAwaitingMaintainer, models.StateWithMaintainer,
		models.StateInProgress, models.StateSuspended)
	if err != nil {
		return false, fmt.Errorf("failed to assign maintainer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// ResetAssignment returns a single live report to PENDING, clearing both
// bindings. Terminal reports are left untouched.
func (r *ReportRepository) ResetAssignment(id uint) error {
	query := `
		UPDATE reports SET
			state = $2, assigned_officer_id = NULL,
			assigned_maintainer_id = NULL, suspend_reason = NULL
		WHERE id = $1 AND state IN ($3, $4, $5, $6)
	`
	_, err := r.db.Exec(query, id, models.StatePending,
		models.StateAwaitingMaintainer, models.StateWithMaintainer,
		models.StateInProgress, models.StateSuspended)
	if err != nil {
		return fmt.Errorf("failed to reset assignment: %w", err)
	}
	return nil
}

// ResetAssignmentsByOfficer returns every live report bound to the officer
// back to PENDING for re-review. Used when an officer is deleted or loses
// the office its assignments belonged to.
func (r *ReportRepository) ResetAssignmentsByOfficer(officerID uint) error {
	query := `
		UPDATE reports SET
			state = $2, assigned_officer_id = NULL,
			assigned_maintainer_id = NULL, suspend_reason = NULL
		WHERE assigned_officer_id = $1 AND state IN ($3, $4, $5, $6)
	`
	_, err := r.db.Exec(query, officerID, models.StatePending,
		models.StateAwaitingMaintainer, models.StateWithMaintainer,
		models.StateInProgress, models.StateSuspended)
	if err != nil {
		return fmt.Errorf("failed to reset officer assignments: %w", err)
	}
	return nil
}

// ResetAssignmentsByMaintainer unbinds the maintainer from its live reports.
// The officer stays bound, so the report falls back to awaiting a maintainer
// rather than restarting review.
func (r *ReportRepository) ResetAssignmentsByMaintainer(maintainerID uint) error {
	query := `
		UPDATE reports SET
			assigned_maintainer_id = NULL,
			state = CASE WHEN state = $2 THEN $3 ELSE state END
		WHERE assigned_maintainer_id = $1 AND state IN ($2, $4, $5)
	`
	_, err := r.db.Exec(query, maintainerID,
		models.StateWithMaintainer, models.StateAwaitingMaintainer,
		models.StateInProgress, models.StateSuspended)
	if err != nil {
		return fmt.Errorf("failed to reset maintainer assignments: %w", err)
	}
	return nil
}
