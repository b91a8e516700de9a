package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/filebox-server/internal/model"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func newTestJWT(opts ...Option) *JWT {
	return NewJWT(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour, opts...)
}

func TestJWT_AccessToken_RoundTrip(t *testing.T) {
	j := newTestJWT()

	tokenString, err := j.GenerateAccessToken("a@x.com", "session-1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := j.ParseAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestJWT_RefreshToken_RoundTrip(t *testing.T) {
	j := newTestJWT()

	tokenString, err := j.GenerateRefreshToken("a@x.com", "session-1")
	require.NoError(t, err)

	claims, err := j.ParseRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestJWT_KindConfusion(t *testing.T) {
	j := newTestJWT()

	access, err := j.GenerateAccessToken("a@x.com", "session-1")
	require.NoError(t, err)
	refresh, err := j.GenerateRefreshToken("a@x.com", "session-1")
	require.NoError(t, err)

	// Distinct secrets: one kind can never verify as the other.
	_, err = j.ParseRefreshToken(access)
	require.ErrorIs(t, err, model.ErrTokenSignatureInvalid)

	_, err = j.ParseAccessToken(refresh)
	require.ErrorIs(t, err, model.ErrTokenSignatureInvalid)
}

func TestJWT_Malformed(t *testing.T) {
	j := newTestJWT()

	_, err := j.ParseAccessToken("not-a-token")
	require.ErrorIs(t, err, model.ErrTokenMalformed)
}

func TestJWT_WrongSecret(t *testing.T) {
	j := newTestJWT()
	other := NewJWT("other-access", "other-refresh", 15*time.Minute, 7*24*time.Hour)

	tokenString, err := other.GenerateAccessToken("a@x.com", "session-1")
	require.NoError(t, err)

	_, err = j.ParseAccessToken(tokenString)
	require.ErrorIs(t, err, model.ErrTokenSignatureInvalid)
}

func TestJWT_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	issuer := newTestJWT(WithTimeFunc(func() time.Time { return issuedAt }))

	tokenString, err := issuer.GenerateAccessToken("a@x.com", "session-1")
	require.NoError(t, err)

	verifier := newTestJWT()
	_, err = verifier.ParseAccessToken(tokenString)
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestJWT_PayloadInvalid_MissingClaims(t *testing.T) {
	j := newTestJWT()

	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID:    "a@x.com",
		TokenType: typeAccess,
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, err = j.ParseAccessToken(signed)
	require.ErrorIs(t, err, model.ErrTokenPayloadInvalid)
}

func TestJWT_PayloadInvalid_TypeMismatch(t *testing.T) {
	j := newTestJWT()

	// A refresh-typed token signed with the access secret: signature passes,
	// the typ claim does not.
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID:    "a@x.com",
		SessionID: "session-1",
		TokenType: typeRefresh,
	}).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)

	_, err = j.ParseAccessToken(signed)
	require.ErrorIs(t, err, model.ErrTokenPayloadInvalid)
}
