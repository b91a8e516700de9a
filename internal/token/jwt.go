package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avolkov/filebox-server/internal/model"
)

// Claims represents JWT claims with token type, user ID and session ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	TokenType string `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. Access and refresh
// tokens are signed with distinct secrets so one kind can never verify as
// the other.
type JWT struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Option configures a JWT token manager.
type Option func(*JWT)

// WithTimeFunc overrides the time source used for issuance and expiry
// validation. Tests use it to control the clock.
func WithTimeFunc(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// NewJWT creates a new JWT token manager with distinct per-kind secrets.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *JWT {
	j := &JWT{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(userID, sessionID string) (string, error) {
	return j.generate(userID, sessionID, typeAccess, j.accessSecret, j.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (j *JWT) GenerateRefreshToken(userID, sessionID string) (string, error) {
	return j.generate(userID, sessionID, typeRefresh, j.refreshSecret, j.refreshTTL)
}

func (j *JWT) generate(userID, sessionID, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		SessionID: sessionID,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token and extracts its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, typeAccess, j.accessSecret)
}

// ParseRefreshToken validates a refresh token and extracts its claims.
func (j *JWT) ParseRefreshToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, typeRefresh, j.refreshSecret)
}

// parse is purely cryptographic: it checks structure, signature and the
// embedded expiry, then validates the payload shape. Store-side state is the
// caller's concern.
func (j *JWT) parse(tokenString, tokenType string, secret []byte) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return model.TokenClaims{}, classifyParseError(err)
	}
	if !token.Valid {
		return model.TokenClaims{}, model.ErrTokenSignatureInvalid
	}
	if claims.TokenType != tokenType {
		return model.TokenClaims{}, fmt.Errorf("%w: token type mismatch: %s", model.ErrTokenPayloadInvalid, claims.TokenType)
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return model.TokenClaims{}, model.ErrTokenPayloadInvalid
	}
	return model.TokenClaims{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", model.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", model.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", model.ErrTokenSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", model.ErrTokenMalformed, err)
	}
}
