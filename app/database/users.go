package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/google/uuid"
)

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`

	err := s.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	if err := s.db.QueryRowContext(ctx, query, u.ID, u.Email, u.PasswordHash).Scan(&u.CreatedAt); err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return nil
}

// GetRole returns the stored role of uid; ErrNotFound when none was assigned.
func (s *PostgresStore) GetRole(ctx context.Context, uid string) (models.Role, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, uid).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return models.Role(role), nil
}

func (s *PostgresStore) SetRole(ctx context.Context, uid string, role models.Role) error {
	query := `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := s.db.ExecContext(ctx, query, uid, string(role))
	return err
}
