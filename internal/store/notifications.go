package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/domain"
)

func (s *Store) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if n.ID == "" {
		n.ID = "ntf_" + uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO notifications (id, title, message, type, is_read, user_id, task_id, project_id, created_at)
VALUES (:id, :title, :message, :type, :is_read, :user_id, :task_id, :project_id, :created_at)`, n)
	if err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

// ExistsRecent reports whether a notification for taskID of the given
// type was created at or after since. This is the scanner's dedup
// query; it is intentionally keyed on task and type only, not on the
// threshold that fired.
func (s *Store) ExistsRecent(ctx context.Context, taskID, ntype string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
SELECT EXISTS(
  SELECT 1 FROM notifications
  WHERE task_id = ? AND type = ? AND created_at >= ?
)`, taskID, ntype, since)
	return exists, err
}

// ListNotifications returns a user's notifications, newest first.
// Read notifications are excluded unless includeRead is set.
func (s *Store) ListNotifications(ctx context.Context, userID string, includeRead bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Notification
	if includeRead {
		err := s.db.SelectContext(ctx, &out, `
SELECT * FROM notifications WHERE user_id = ?
ORDER BY created_at DESC LIMIT ?`, userID, limit)
		return out, err
	}
	err := s.db.SelectContext(ctx, &out, `
SELECT * FROM notifications WHERE user_id = ? AND is_read = 0
ORDER BY created_at DESC LIMIT ?`, userID, limit)
	return out, err
}

// MarkRead flips the read flag on a single notification owned by userID.
func (s *Store) MarkRead(ctx context.Context, id, userID string) (domain.Notification, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return domain.Notification{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Notification{}, ErrNotFound
	}
	var n domain.Notification
	err = s.db.GetContext(ctx, &n, `SELECT * FROM notifications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, ErrNotFound
	}
	return n, err
}

// MarkAllRead marks every unread notification for a user as read and
// returns how many rows changed.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
