package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/domain"
)

func (s *Store) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = "tsk_" + uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO tasks (id, title, description, status, priority, due_date, position, project_id, created_at, updated_at)
VALUES (:id, :title, :description, :status, :priority, :due_date, :position, :project_id, :created_at, :updated_at)`, t)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var t domain.Task
	err := s.db.GetContext(ctx, &t, `SELECT * FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, ErrNotFound
	}
	return t, err
}

// ListTasks returns tasks for a project, optionally filtered by status.
func (s *Store) ListTasks(ctx context.Context, projectID string, status string) ([]domain.Task, error) {
	var out []domain.Task
	if status != "" {
		err := s.db.SelectContext(ctx, &out, `
SELECT * FROM tasks WHERE project_id = ? AND status = ?
ORDER BY position, created_at`, projectID, status)
		return out, err
	}
	err := s.db.SelectContext(ctx, &out, `
SELECT * FROM tasks WHERE project_id = ?
ORDER BY position, created_at`, projectID)
	return out, err
}

// ListTasksByOwner returns every task in any project owned by ownerID.
func (s *Store) ListTasksByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	var out []domain.Task
	err := s.db.SelectContext(ctx, &out, `
SELECT t.* FROM tasks t
JOIN projects p ON p.id = t.project_id
WHERE p.owner_id = ?
ORDER BY t.created_at`, ownerID)
	return out, err
}

func (s *Store) UpdateTask(ctx context.Context, t domain.Task) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
UPDATE tasks SET title = :title, description = :description, status = :status,
  priority = :priority, due_date = :due_date, position = :position, updated_at = :updated_at
WHERE id = :id`, t)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveWithDueDate returns every task that has a due date and is
// not done, joined with its project's name and owner. This is the
// scanner's working set.
func (s *Store) ListActiveWithDueDate(ctx context.Context) ([]domain.DeadlineTask, error) {
	var out []domain.DeadlineTask
	err := s.db.SelectContext(ctx, &out, `
SELECT t.*, p.name AS project_name, p.owner_id AS owner_id
FROM tasks t
JOIN projects p ON p.id = t.project_id
WHERE t.due_date IS NOT NULL AND t.status != 'done'`)
	return out, err
}
