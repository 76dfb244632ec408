package repository

import (
	"database/sql"
	"fmt"

	"civicreport/internal/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, report_id, type, message, read)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, created_at
	`
	return r.db.QueryRow(query,
		n.UserID,
		n.ReportID,
		string(n.Type),
		n.Message,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(userID uint) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, report_id, type, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.ReportID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread returns how many unread notifications a user has.
func (r *NotificationRepository) CountUnread(userID uint) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// ListUsersWithUnread returns the ids of users holding at least one unread
// notification, for the digest scheduler.
func (r *NotificationRepository) ListUsersWithUnread() ([]uint, error) {
	rows, err := r.db.Query(`SELECT DISTINCT user_id FROM notifications WHERE NOT read`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread users: %w", err)
	}
	defer rows.Close()

	users := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unread users: %w", err)
	}

	return users, nil
}

// MarkRead marks a single notification read. Idempotent; marking an already
// read notification succeeds. Returns sql.ErrNoRows when the notification
// does not belong to the user.
func (r *NotificationRepository) MarkRead(userID, notificationID uint) error {
	result, err := r.db.Exec(
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
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

// MarkAllRead marks every notification of a user read.
func (r *NotificationRepository) MarkAllRead(userID uint) error {
	_, err := r.db.Exec(`UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
