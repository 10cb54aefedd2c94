package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/repo"
)

const minPasswordLength = 8

// NewUser is the input for creating a user. Password is plain text and is
// hashed before it reaches the repo.
type NewUser struct {
	Username    string
	DisplayName string
	Password    string
	RoleID      int
}

// UserService manages application users and login.
type UserService struct {
	repo   repo.UserRepo
	issuer *auth.Issuer
}

// NewUserService constructs a UserService. issuer may be nil for callers
// that never log users in (the CLI).
func NewUserService(r repo.UserRepo, issuer *auth.Issuer) *UserService {
	return &UserService{repo: r, issuer: issuer}
}

// Create validates, hashes the password, and persists a new user.
func (s *UserService) Create(ctx context.Context, in NewUser) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Username == "":
		return domain.User{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	case len(in.Password) < minPasswordLength:
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	case !auth.ValidRole(in.RoleID):
		return domain.User{}, fmt.Errorf("%w: unknown role %d", domain.ErrValidation, in.RoleID)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	u, err := s.repo.Create(ctx, domain.User{
		Username:     in.Username,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		RoleID:       in.RoleID,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	slog.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.RoleID)
	return u, nil
}

// Login checks the credentials and returns a signed token. Unknown users and
// wrong passwords both return domain.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return "", domain.User{}, fmt.Errorf("service.UserService.Login: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		slog.WarnContext(ctx, "login failed", "username", u.Username)
		return "", domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	token, err := s.issuer.Issue(u)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("service.UserService.Login: %w", err)
	}
	return token, u, nil
}

// GetByID returns a single user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return u, nil
}

// List returns every user ordered by username.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.List: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

// Delete removes a user. A user cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrConflict)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.UserService.Delete: %w", err)
	}
	return nil
}
