package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role ids as stored in users.role_id.
const (
	RoleAdmin      = 1
	RoleDispatcher = 2
	RoleViewer     = 3
)

// User is an operator of the application. PasswordHash is a bcrypt hash and
// is never serialised to clients.
type User struct {
	ID           uuid.UUID
	Username     string
	DisplayName  string
	RoleID       int
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
