package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = "usr_" + uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.IsActive = true

	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO users (id, email, password_hash, name, is_active, created_at, updated_at)
VALUES (:id, :email, :password_hash, :name, :is_active, :created_at, :updated_at)`, u)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) UpdateUser(ctx context.Context, u domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
UPDATE users SET email = :email, password_hash = :password_hash, name = :name,
  is_active = :is_active, updated_at = :updated_at
WHERE id = :id`, u)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
