package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
)

// RefreshTokenCookie is the cookie carrying the refresh token. It is scoped
// to the rotation endpoint only and opaque to the client.
const (
	RefreshTokenCookie = "refresh_token"
	rotationPath       = "/api/auth/signin/new_token"
)

// AuthService defines signup and signin operations.
type AuthService interface {
	Signup(ctx context.Context, id, password string) (model.TokenPair, error)
	Signin(ctx context.Context, id, password string) (model.TokenPair, error)
}

// TokenService defines rotation and logout operations.
type TokenService interface {
	Rotate(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, userID, sessionID string) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	tokenService   TokenService
	contextManager model.ContextManager
	refreshTTL     time.Duration
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	authService AuthService,
	tokenService TokenService,
	contextManager model.ContextManager,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		refreshTTL:     refreshTTL,
		logger:         logger,
	}
}

type credentialsRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// Signup registers a user and opens their first session.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	pair, err := h.authService.Signup(r.Context(), req.ID, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: signup failed",
			"user_id", req.ID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusCreated, tokenResponse{
		Message:     "User registered successfully",
		AccessToken: pair.AccessToken,
	})
}

// Signin verifies credentials and opens a new session.
func (h *Auth) Signin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	pair, err := h.authService.Signin(r.Context(), req.ID, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: signin failed",
			"user_id", req.ID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, tokenResponse{
		Message:     "Login successful",
		AccessToken: pair.AccessToken,
	})
}

// RefreshToken rotates the refresh token presented in the cookie and
// returns a new access token; the rotated refresh token replaces the
// cookie.
func (h *Auth) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusBadRequest, model.ErrMissingRefreshToken.Error())
		return
	}

	pair, err := h.tokenService.Rotate(r.Context(), cookie.Value)
	if err != nil {
		h.logger.Error("Auth handler: token rotation failed",
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, tokenResponse{
		Message:     "Access token refreshed",
		AccessToken: pair.AccessToken,
	})
}

// Logout revokes the session the authorization guard attached to the
// request context.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.tokenService.Logout(r.Context(), session.UserID, session.SessionID); err != nil {
		h.logger.Error("Auth handler: logout failed",
			"user_id", session.UserID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Auth) decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing id or password")
		return credentialsRequest{}, false
	}
	return req, true
}

func (h *Auth) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     rotationPath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
