package store

import (
	"context"
	"time"

	"taskhub/internal/domain"
)

// DashboardCounts holds the aggregate totals shown on the dashboard.
type DashboardCounts struct {
	TotalProjects  int `db:"total_projects" json:"total_projects"`
	TotalTasks     int `db:"total_tasks" json:"total_tasks"`
	CompletedTasks int `db:"completed_tasks" json:"completed_tasks"`
}

func (s *Store) GetDashboardCounts(ctx context.Context, ownerID string) (DashboardCounts, error) {
	var c DashboardCounts
	err := s.db.GetContext(ctx, &c, `
SELECT
  (SELECT COUNT(*) FROM projects WHERE owner_id = ?) AS total_projects,
  (SELECT COUNT(*) FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.owner_id = ?) AS total_tasks,
  (SELECT COUNT(*) FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.owner_id = ? AND t.status = 'done') AS completed_tasks
`, ownerID, ownerID, ownerID)
	return c, err
}

// ListRecentProjects returns the owner's most recently created
// projects with their task counts.
func (s *Store) ListRecentProjects(ctx context.Context, ownerID string, limit int) ([]domain.Project, error) {
	var out []domain.Project
	err := s.db.SelectContext(ctx, &out, `
SELECT p.*, (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count
FROM projects p WHERE p.owner_id = ?
ORDER BY p.created_at DESC LIMIT ?`, ownerID, limit)
	return out, err
}

// ListTasksDueBetween returns the owner's unfinished tasks with a due
// date in [from, to).
func (s *Store) ListTasksDueBetween(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Task, error) {
	var out []domain.Task
	err := s.db.SelectContext(ctx, &out, `
SELECT t.* FROM tasks t
JOIN projects p ON p.id = t.project_id
WHERE p.owner_id = ? AND t.status != 'done'
  AND t.due_date IS NOT NULL AND t.due_date >= ? AND t.due_date < ?
ORDER BY t.due_date`, ownerID, from, to)
	return out, err
}

// ListOverdueTasks returns the owner's unfinished tasks due before the
// given cutoff.
func (s *Store) ListOverdueTasks(ctx context.Context, ownerID string, before time.Time) ([]domain.Task, error) {
	var out []domain.Task
	err := s.db.SelectContext(ctx, &out, `
SELECT t.* FROM tasks t
JOIN projects p ON p.id = t.project_id
WHERE p.owner_id = ? AND t.status != 'done'
  AND t.due_date IS NOT NULL AND t.due_date < ?
ORDER BY t.due_date`, ownerID, before)
	return out, err
}
