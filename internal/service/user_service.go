package service

import (
	"context"
	"errors"

	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/domain/user"
	"github.com/example/marketplace/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords so
// the two cases are indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService owns account registration and token issuance.
type UserService struct {
	users  store.UserStore
	jwt    *auth.JWTService
	logger *zap.Logger
}

func NewUserService(users store.UserStore, jwt *auth.JWTService, logger *zap.Logger) *UserService {
	return &UserService{users: users, jwt: jwt, logger: logger}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*user.User, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:       uuid.New().String(),
		Username: username,
		Password: hash,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("username", username))
	return u, nil
}

// Authenticate verifies the credentials and issues a bearer token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil || !auth.CheckPassword(password, u.Password) {
		return "", ErrInvalidCredentials
	}

	token, _, err := s.jwt.GenerateToken(u.ID, u.Username)
	if err != nil {
		return "", err
	}
	return token, nil
}
