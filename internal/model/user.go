package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored user with credential material. The ID is
// caller-supplied (email or phone) and never changes after signup.
type User struct {
	ID           string
	PasswordHash string
	CreatedAt    time.Time
}
