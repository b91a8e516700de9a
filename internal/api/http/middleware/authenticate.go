package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
)

// TokenAuthorizer resolves the session principal behind a bearer token.
type TokenAuthorizer interface {
	Authorize(ctx context.Context, accessToken string) (model.Session, error)
}

// Authenticate guards protected routes: it requires a bearer access token,
// verifies it, checks the backing session row and injects the principal
// into the request context.
type Authenticate struct {
	tokenService   TokenAuthorizer
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenAuthorizer, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle wraps next with the authorization check.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			m.reject(w, model.ErrMissingAuthHeader)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		session, err := m.tokenService.Authorize(r.Context(), tokenString)
		if err != nil {
			m.logger.Debug("Authenticate middleware: request rejected",
				"path", r.URL.Path,
				"error", err.Error())
			m.reject(w, err)
			return
		}

		ctx := m.contextManager.SetSessionToContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guardErrors are the authorization failures surfaced verbatim to clients;
// anything else is an infrastructure fault.
var guardErrors = []error{
	model.ErrMissingAuthHeader,
	model.ErrTokenMalformed,
	model.ErrTokenSignatureInvalid,
	model.ErrTokenExpired,
	model.ErrTokenPayloadInvalid,
	model.ErrSessionRevoked,
	model.ErrRefreshTokenExpired,
}

func (m *Authenticate) reject(w http.ResponseWriter, err error) {
	for _, guardErr := range guardErrors {
		if errors.Is(err, guardErr) {
			writeJSONError(w, http.StatusUnauthorized, guardErr.Error())
			return
		}
	}

	m.logger.Error("Authenticate middleware: authorization failed",
		"error", err.Error())
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
