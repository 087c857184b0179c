package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/marketplace/internal/domain/user"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password, client_id, security_key)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.Password, u.ClientID, u.SecurityKey)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	return s.findOne(ctx, `SELECT id, username, password, client_id, security_key FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.findOne(ctx, `SELECT id, username, password, client_id, security_key FROM users WHERE username = $1`, username)
}

func (s *PostgresUserStore) findOne(ctx context.Context, query, arg string) (*user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Password, &u.ClientID, &u.SecurityKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
