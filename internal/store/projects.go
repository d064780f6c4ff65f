package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/domain"
)

func (s *Store) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = "prj_" + uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO projects (id, name, description, deadline, owner_id, created_at, updated_at)
VALUES (:id, :name, :description, :deadline, :owner_id, :created_at, :updated_at)`, p)
	if err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := s.db.GetContext(ctx, &p, `
SELECT p.*, (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count
FROM projects p WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, ErrNotFound
	}
	return p, err
}

func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	var out []domain.Project
	err := s.db.SelectContext(ctx, &out, `
SELECT p.*, (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count
FROM projects p WHERE p.owner_id = ?
ORDER BY p.created_at DESC`, ownerID)
	return out, err
}

func (s *Store) UpdateProject(ctx context.Context, p domain.Project) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
UPDATE projects SET name = :name, description = :description, deadline = :deadline,
  updated_at = :updated_at
WHERE id = :id`, p)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
