package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolkov/filebox-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, token model.SessionToken) error {
	const query = `
        INSERT INTO session_tokens (
            id, user_id, refresh_token, session_id, expires_at, revoked_at, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.querier(ctx).Exec(ctx, query,
		token.ID, token.UserID, token.RefreshToken, token.SessionID,
		token.ExpiresAt, token.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session token: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (model.SessionToken, error) {
	const query = `
        SELECT id, user_id, refresh_token, session_id, expires_at, revoked_at, created_at
        FROM session_tokens WHERE refresh_token = $1
    `
	return r.getOne(ctx, query, refreshToken)
}

func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (model.SessionToken, error) {
	const query = `
        SELECT id, user_id, refresh_token, session_id, expires_at, revoked_at, created_at
        FROM session_tokens WHERE session_id = $1
    `
	return r.getOne(ctx, query, sessionID)
}

func (r *SessionRepository) getOne(ctx context.Context, query string, arg any) (model.SessionToken, error) {
	var st model.SessionToken
	err := r.db.querier(ctx).QueryRow(ctx, query, arg).Scan(
		&st.ID, &st.UserID, &st.RefreshToken, &st.SessionID,
		&st.ExpiresAt, &st.RevokedAt, &st.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SessionToken{}, model.ErrNotFound
		}
		return model.SessionToken{}, fmt.Errorf("failed to get session token: %w", err)
	}
	return st, nil
}

// Revoke is a conditional update: only a row whose revoked_at is still null
// can transition to revoked. Zero rows matched reports model.ErrNotFound so
// concurrent revocations have exactly one winner.
func (r *SessionRepository) Revoke(ctx context.Context, userID string, target model.RevokeTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}

	query := `
        UPDATE session_tokens SET revoked_at = NOW()
        WHERE user_id = $1 AND revoked_at IS NULL AND refresh_token = $2
    `
	arg := target.RefreshToken
	if target.SessionID != "" {
		query = `
        UPDATE session_tokens SET revoked_at = NOW()
        WHERE user_id = $1 AND revoked_at IS NULL AND session_id = $2
    `
		arg = target.SessionID
	}

	tag, err := r.db.querier(ctx).Exec(ctx, query, userID, arg)
	if err != nil {
		return fmt.Errorf("failed to revoke session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
