package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role constants for User.Role.
const (
	RoleAdmin  = "admin"  // manages interviewer personas
	RoleMember = "member" // takes interviews
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // argon2id, empty for OAuth-only users
	Name         string
	Role         string // "admin" or "member"
	CreatedAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
