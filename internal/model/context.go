package model

import "context"

// ContextManager attaches the authenticated session principal to a request
// context and reads it back downstream.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, session Session) context.Context
	GetSessionFromContext(ctx context.Context) (Session, bool)
}
