package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
	"github.com/avolkov/filebox-server/internal/security"
)

// Auth implements signup and signin on top of the credential store and the
// token service.
type Auth struct {
	userStore    model.UserStore
	tx           model.TransactionManager
	tokenService *TokenService
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	tx model.TransactionManager,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		tx:           tx,
		tokenService: tokenService,
		logger:       logger,
		now:          time.Now,
	}
}

// Signup registers a new user and opens their first session. The user row
// and the session row commit together or not at all, so a crash can never
// leave an orphan user with no session.
func (a *Auth) Signup(ctx context.Context, id, password string) (model.TokenPair, error) {
	a.logger.Debug("Auth service: starting user signup", "user_id", id)

	_, err := a.userStore.GetByID(ctx, id)
	if err == nil {
		a.logger.Info("Auth service: user already exists", "user_id", id)
		return model.TokenPair{}, model.ErrUserAlreadyExists
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var pair model.TokenPair
	err = a.tx.RunTransaction(ctx, func(ctx context.Context) error {
		user := model.User{
			ID:           id,
			PasswordHash: passwordHash,
			CreatedAt:    a.now(),
		}
		if _, err := a.userStore.Create(ctx, user); err != nil {
			return err
		}

		p, err := a.tokenService.Issue(ctx, id)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.TokenPair{}, model.ErrUserAlreadyExists
		}
		a.logger.Error("Auth service: signup failed",
			"user_id", id,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to sign up: %w", err)
	}

	a.logger.Info("Auth service: user registered", "user_id", id)

	return pair, nil
}

// Signin verifies credentials and opens a new session for an existing user.
func (a *Auth) Signin(ctx context.Context, id, password string) (model.TokenPair, error) {
	a.logger.Debug("Auth service: starting user signin", "user_id", id)

	user, err := a.userStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, model.ErrInvalidUserID
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if err := security.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, model.ErrInvalidPassword) {
			a.logger.Info("Auth service: password mismatch", "user_id", id)
			return model.TokenPair{}, model.ErrInvalidPassword
		}
		return model.TokenPair{}, err
	}

	pair, err := a.tokenService.Issue(ctx, id)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", id,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user signed in", "user_id", id)

	return pair, nil
}
