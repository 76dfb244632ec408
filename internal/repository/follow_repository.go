package repository

import (
	"database/sql"
	"fmt"
)

// FollowRepository persists which users follow which reports.
type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow subscribes a user to a report. Following twice is a no-op.
func (r *FollowRepository) Follow(userID, reportID uint) error {
	query := `
		INSERT INTO report_follows (user_id, report_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, report_id) DO NOTHING
	`
	if _, err := r.db.Exec(query, userID, reportID); err != nil {
		return fmt.Errorf("failed to follow report: %w", err)
	}
	return nil
}

// Unfollow removes the subscription. Unfollowing a report that was never
// followed is a no-op.
func (r *FollowRepository) Unfollow(userID, reportID uint) error {
	if _, err := r.db.Exec(`DELETE FROM report_follows WHERE user_id = $1 AND report_id = $2`, userID, reportID); err != nil {
		return fmt.Errorf("failed to unfollow report: %w", err)
	}
	return nil
}

// IsFollowing reports whether the user follows the report.
func (r *FollowRepository) IsFollowing(userID, reportID uint) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM report_follows WHERE user_id = $1 AND report_id = $2)`
	if err := r.db.QueryRow(query, userID, reportID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// ListFollowerIDs returns the ids of every user following a report.
func (r *FollowRepository) ListFollowerIDs(reportID uint) ([]uint, error) {
	rows, err := r.db.Query(`SELECT user_id FROM report_follows WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query followers: %w", err)
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follower id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating followers: %w", err)
	}

	return ids, nil
}
