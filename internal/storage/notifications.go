package storage

import (
	"fmt"
	"time"
)

// AddNotification stores a notification for a user.
func (s *Store) AddNotification(n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO notifications (id, user_id, kind, body, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Kind, n.Body, boolToInt(n.Read),
		n.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(userID string, limit int) ([]Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, kind, body, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Notification
	for rows.Next() {
		var n Notification
		var read int
		var createdAt string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Body, &read, &createdAt); err != nil {
			return nil, err
		}
		n.Read = read != 0
		if n.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

// MarkNotificationRead flags a notification as read. The userID guard keeps
// users from acknowledging each other's notifications.
func (s *Store) MarkNotificationRead(id, userID string) error {
	res, err := s.db.Exec(
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
