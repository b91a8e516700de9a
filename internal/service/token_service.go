package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
)

// TokenService owns the session lifecycle: issuing token pairs, rotating
// refresh tokens, revoking sessions, and authorizing access tokens against
// store state. The codec proves who minted a token; the store decides
// whether the session behind it is still alive.
type TokenService struct {
	manager    model.TokenManager
	sessions   model.SessionStore
	tx         model.TransactionManager
	refreshTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

func NewTokenService(
	manager model.TokenManager,
	sessions model.SessionStore,
	tx model.TransactionManager,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *TokenService {
	return &TokenService{
		manager:    manager,
		sessions:   sessions,
		tx:         tx,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue mints a fresh session id, generates both tokens under it and
// persists the session row. Runs inside an ambient transaction when the
// caller provides one through the context.
func (s *TokenService) Issue(ctx context.Context, userID string) (model.TokenPair, error) {
	sessionID := uuid.NewString()

	access, err := s.manager.GenerateAccessToken(userID, sessionID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(userID, sessionID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	st := model.SessionToken{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: refresh,
		SessionID:    sessionID,
		ExpiresAt:    s.now().Add(s.refreshTTL),
		RevokedAt:    nil,
	}

	if err := s.sessions.Create(ctx, st); err != nil {
		return model.TokenPair{}, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Debug("Token service: issued token pair",
		"user_id", userID,
		"session_id", sessionID)

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate advances a session to its next generation: the presented refresh
// token's row is revoked and a row under a brand-new session id is inserted,
// both in one transaction. A rotation that loses the race observes the
// conditional revoke matching zero rows and aborts without partial effect.
func (s *TokenService) Rotate(ctx context.Context, presentedRefresh string) (model.TokenPair, error) {
	claims, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	row, err := s.sessions.GetByRefreshToken(ctx, presentedRefresh)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.TokenPair{}, model.ErrRefreshTokenInvalid
		}
		return model.TokenPair{}, fmt.Errorf("get session by refresh token: %w", err)
	}

	if row.Revoked() || row.UserID != claims.UserID {
		return model.TokenPair{}, model.ErrRefreshTokenInvalid
	}

	// Store-authoritative expiry, independent of the token's embedded claim.
	if s.now().After(row.ExpiresAt) {
		return model.TokenPair{}, model.ErrRefreshTokenExpired
	}

	sessionID := uuid.NewString()

	access, err := s.manager.GenerateAccessToken(row.UserID, sessionID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue new access: %w", err)
	}
	refresh, err := s.manager.GenerateRefreshToken(row.UserID, sessionID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue new refresh: %w", err)
	}

	newRow := model.SessionToken{
		ID:           uuid.New(),
		UserID:       row.UserID,
		RefreshToken: refresh,
		SessionID:    sessionID,
		ExpiresAt:    s.now().Add(s.refreshTTL),
		RevokedAt:    nil,
	}

	err = s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.Revoke(ctx, row.UserID, model.ByRefreshToken(presentedRefresh)); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.ErrSessionNotFoundOrRevoked
			}
			return fmt.Errorf("revoke old session: %w", err)
		}
		if err := s.sessions.Create(ctx, newRow); err != nil {
			return fmt.Errorf("persist new session: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	s.logger.Info("Token service: rotated refresh token",
		"user_id", row.UserID,
		"session_id", sessionID)

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revokes the session matching both userID and sessionID. Revoking
// twice reports model.ErrSessionNotFoundOrRevoked the second time.
func (s *TokenService) Logout(ctx context.Context, userID, sessionID string) error {
	err := s.sessions.Revoke(ctx, userID, model.BySessionID(sessionID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrSessionNotFoundOrRevoked
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	s.logger.Info("Token service: session revoked",
		"user_id", userID,
		"session_id", sessionID)

	return nil
}

// Authorize validates an access token and then checks the backing session
// row. Check order is fixed: signature/structure, payload shape, store
// revocation, store expiry. No token payload field is trusted as proof of
// current validity.
func (s *TokenService) Authorize(ctx context.Context, accessToken string) (model.Session, error) {
	claims, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return model.Session{}, err
	}

	row, err := s.sessions.GetBySessionID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Session{}, model.ErrSessionRevoked
		}
		return model.Session{}, fmt.Errorf("get session by id: %w", err)
	}

	if row.Revoked() {
		return model.Session{}, model.ErrSessionRevoked
	}
	if s.now().After(row.ExpiresAt) {
		return model.Session{}, model.ErrRefreshTokenExpired
	}

	return model.Session{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}
