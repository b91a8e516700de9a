package context

import (
	"context"

	"github.com/avolkov/filebox-server/internal/model"
)

type sessionKey struct{}

// Manager attaches the authenticated session principal to request contexts
// and reads it back in handlers.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

var _ model.ContextManager = (*Manager)(nil)

// SetSessionToContext returns a context carrying the session principal.
func (m *Manager) SetSessionToContext(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext retrieves the session principal set by the
// authorization middleware.
func (m *Manager) GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(model.Session)
	return session, ok
}
