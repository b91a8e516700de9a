package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avolkov/filebox-server/internal/model"
)

// SessionStore is a mock implementation of model.SessionStore.
type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) Create(ctx context.Context, token model.SessionToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (model.SessionToken, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(model.SessionToken), args.Error(1)
}

func (m *SessionStore) GetBySessionID(ctx context.Context, sessionID string) (model.SessionToken, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(model.SessionToken), args.Error(1)
}

func (m *SessionStore) Revoke(ctx context.Context, userID string, target model.RevokeTarget) error {
	args := m.Called(ctx, userID, target)
	return args.Error(0)
}
