package repository

import (
	"database/sql"
	"fmt"

	"civicreport/internal/models"
)

// InternalMessageRepository persists the staff-only conversation on a report.
type InternalMessageRepository struct {
	db *sql.DB
}

func NewInternalMessageRepository(db *sql.DB) *InternalMessageRepository {
	return &InternalMessageRepository{db: db}
}

func (r *InternalMessageRepository) Create(msg *models.InternalMessage) error {
	query := `
		INSERT INTO internal_messages (report_id, sender_type, sender_id, receiver_type, receiver_id, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(query,
		msg.ReportID,
		string(msg.SenderType),
		msg.SenderID,
		string(msg.ReceiverType),
		msg.ReceiverID,
		msg.Message,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// ListByReport returns the full internal history of a report in send order.
// Messages survive reassignment; the history always shows every exchange.
func (r *InternalMessageRepository) ListByReport(reportID uint) ([]models.InternalMessage, error) {
	query := `
		SELECT id, report_id, sender_type, sender_id, receiver_type, receiver_id, message, created_at
		FROM internal_messages
		WHERE report_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query internal messages: %w", err)
	}
	defer rows.Close()

	messages := []models.InternalMessage{}
	for rows.Next() {
		var m models.InternalMessage
		err := rows.Scan(
			&m.ID, &m.ReportID, &m.SenderType, &m.SenderID,
			&m.ReceiverType, &m.ReceiverID, &m.Message, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internal message: %w", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating internal messages: %w", err)
	}

	return messages, nil
}

// PublicMessageRepository persists the citizen-facing conversation on a report.
type PublicMessageRepository struct {
	db *sql.DB
}

func NewPublicMessageRepository(db *sql.DB) *PublicMessageRepository {
	return &PublicMessageRepository{db: db}
}

func (r *PublicMessageRepository) Create(msg *models.PublicMessage) error {
	query := `
		INSERT INTO public_messages (report_id, sender_type, sender_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(query,
		msg.ReportID,
		string(msg.SenderType),
		msg.SenderID,
		msg.Message,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *PublicMessageRepository) ListByReport(reportID uint) ([]models.PublicMessage, error) {
	query := `
		SELECT id, report_id, sender_type, sender_id, message, created_at
		FROM public_messages
		WHERE report_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query public messages: %w", err)
	}
	defer rows.Close()

	messages := []models.PublicMessage{}
	for rows.Next() {
		var m models.PublicMessage
		err := rows.Scan(&m.ID, &m.ReportID, &m.SenderType, &m.SenderID, &m.Message, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan public message: %w", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating public messages: %w", err)
	}

	return messages, nil
}
