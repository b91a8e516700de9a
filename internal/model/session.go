package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines persistence operations for refresh-token sessions.
// Every operation honors a transaction carried in the context by a
// TransactionManager; without one, each call is its own atomic unit.
type SessionStore interface {
	Create(ctx context.Context, token SessionToken) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionToken, error)
	GetBySessionID(ctx context.Context, sessionID string) (SessionToken, error)
	Revoke(ctx context.Context, userID string, target RevokeTarget) error
}

// TransactionManager runs fn inside a single database transaction. The
// transaction handle travels through the context fn receives; it commits
// when fn returns nil and rolls back otherwise.
type TransactionManager interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionToken is one refresh-token issuance. A row is written once per
// signup/signin/rotation and mutated exactly once when revoked; rows are
// never deleted.
type SessionToken struct {
	ID           uuid.UUID
	UserID       string
	RefreshToken string
	SessionID    string
	ExpiresAt    time.Time
	RevokedAt    *time.Time
	CreatedAt    time.Time
}

// Revoked reports whether the session has been permanently revoked.
func (t SessionToken) Revoked() bool {
	return t.RevokedAt != nil
}

// RevokeTarget selects the row to revoke: exactly one of RefreshToken or
// SessionID must be set.
type RevokeTarget struct {
	RefreshToken string
	SessionID    string
}

// ByRefreshToken targets the row holding the exact refresh-token value.
func ByRefreshToken(refreshToken string) RevokeTarget {
	return RevokeTarget{RefreshToken: refreshToken}
}

// BySessionID targets the row minted under the given session id.
func BySessionID(sessionID string) RevokeTarget {
	return RevokeTarget{SessionID: sessionID}
}

// Validate enforces the exactly-one-field invariant.
func (t RevokeTarget) Validate() error {
	if (t.RefreshToken == "") == (t.SessionID == "") {
		return ErrInvalidRevokeTarget
	}
	return nil
}

// Session is the authenticated principal attached to a request after the
// authorization guard admits it.
type Session struct {
	UserID    string
	SessionID string
}
