package model

import "errors"

// ErrNotFound is returned by stores when no row matched.
var ErrNotFound = errors.New("record not found")

// Credential errors.
var (
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Token verification errors. Each cryptographic failure class is a distinct
// sentinel because external behavior depends on telling them apart.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenPayloadInvalid   = errors.New("token payload invalid")
)

// Session lifecycle errors.
var (
	ErrRefreshTokenInvalid      = errors.New("invalid or revoked refresh token")
	ErrRefreshTokenExpired      = errors.New("refresh token expired")
	ErrSessionRevoked           = errors.New("session revoked")
	ErrSessionNotFoundOrRevoked = errors.New("session not found or already revoked")
	ErrInvalidRevokeTarget      = errors.New("either session id or refresh token must be provided")
)

// Transport-level errors for missing credential material.
var (
	ErrMissingAuthHeader   = errors.New("missing or invalid authorization header")
	ErrMissingRefreshToken = errors.New("missing refresh token")
)
