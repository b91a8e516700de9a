//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/avolkov/filebox-server/internal/model"
	repo "github.com/avolkov/filebox-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "filebox_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/filebox_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newSessionRow(userID string) model.SessionToken {
	return model.SessionToken{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: uuid.NewString(),
		SessionID:    uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	u := model.User{ID: "user@example.com", PasswordHash: "hash", CreatedAt: time.Now()}
	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)

	got, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hash", got.PasswordHash)

	_, err = ur.GetByID(ctx, "ghost@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ur.Create(ctx, u)
	require.ErrorIs(t, err, model.ErrUserAlreadyExists)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	sr := repo.NewSessionRepository(conn)

	_, err = ur.Create(ctx, model.User{ID: "sess@example.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.NoError(t, err)

	row := newSessionRow("sess@example.com")
	require.NoError(t, sr.Create(ctx, row))

	byToken, err := sr.GetByRefreshToken(ctx, row.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, row.SessionID, byToken.SessionID)
	require.False(t, byToken.Revoked())

	bySession, err := sr.GetBySessionID(ctx, row.SessionID)
	require.NoError(t, err)
	require.Equal(t, row.RefreshToken, bySession.RefreshToken)

	_, err = sr.GetByRefreshToken(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestSessionRepository_ConditionalRevoke(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	sr := repo.NewSessionRepository(conn)

	_, err = ur.Create(ctx, model.User{ID: "revoke@example.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.NoError(t, err)

	row := newSessionRow("revoke@example.com")
	require.NoError(t, sr.Create(ctx, row))

	// First revoke wins, the second observes zero matched rows.
	require.NoError(t, sr.Revoke(ctx, row.UserID, model.ByRefreshToken(row.RefreshToken)))
	err = sr.Revoke(ctx, row.UserID, model.ByRefreshToken(row.RefreshToken))
	require.ErrorIs(t, err, model.ErrNotFound)

	got, err := sr.GetByRefreshToken(ctx, row.RefreshToken)
	require.NoError(t, err)
	require.True(t, got.Revoked())

	// Revoking by session id is subject to the same condition.
	other := newSessionRow("revoke@example.com")
	require.NoError(t, sr.Create(ctx, other))
	require.NoError(t, sr.Revoke(ctx, other.UserID, model.BySessionID(other.SessionID)))
	err = sr.Revoke(ctx, other.UserID, model.BySessionID(other.SessionID))
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestSessionRepository_RevokeScopedToUser(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	sr := repo.NewSessionRepository(conn)

	_, err = ur.Create(ctx, model.User{ID: "owner@example.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.NoError(t, err)

	row := newSessionRow("owner@example.com")
	require.NoError(t, sr.Create(ctx, row))

	// A different user cannot revoke someone else's session.
	err = sr.Revoke(ctx, "intruder@example.com", model.BySessionID(row.SessionID))
	require.ErrorIs(t, err, model.ErrNotFound)

	got, err := sr.GetBySessionID(ctx, row.SessionID)
	require.NoError(t, err)
	require.False(t, got.Revoked())
}

func TestSessionRepository_RevokeTargetValidation(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	sr := repo.NewSessionRepository(conn)

	err = sr.Revoke(ctx, "user@example.com", model.RevokeTarget{})
	require.ErrorIs(t, err, model.ErrInvalidRevokeTarget)

	err = sr.Revoke(ctx, "user@example.com", model.RevokeTarget{RefreshToken: "t", SessionID: "s"})
	require.ErrorIs(t, err, model.ErrInvalidRevokeTarget)
}

func TestConnection_RunTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	sr := repo.NewSessionRepository(conn)

	_, err = ur.Create(ctx, model.User{ID: "tx@example.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.NoError(t, err)

	old := newSessionRow("tx@example.com")
	require.NoError(t, sr.Create(ctx, old))

	replacement := newSessionRow("tx@example.com")
	boom := errors.New("boom")

	err = conn.RunTransaction(ctx, func(ctx context.Context) error {
		if err := sr.Revoke(ctx, old.UserID, model.ByRefreshToken(old.RefreshToken)); err != nil {
			return err
		}
		if err := sr.Create(ctx, replacement); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing committed: the old row is still live, the replacement absent.
	got, err := sr.GetByRefreshToken(ctx, old.RefreshToken)
	require.NoError(t, err)
	require.False(t, got.Revoked())

	_, err = sr.GetByRefreshToken(ctx, replacement.RefreshToken)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestConnection_RunTransaction_Commit(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	sr := repo.NewSessionRepository(conn)

	_, err = ur.Create(ctx, model.User{ID: "tx2@example.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.NoError(t, err)

	old := newSessionRow("tx2@example.com")
	require.NoError(t, sr.Create(ctx, old))

	replacement := newSessionRow("tx2@example.com")

	err = conn.RunTransaction(ctx, func(ctx context.Context) error {
		if err := sr.Revoke(ctx, old.UserID, model.ByRefreshToken(old.RefreshToken)); err != nil {
			return err
		}
		return sr.Create(ctx, replacement)
	})
	require.NoError(t, err)

	got, err := sr.GetByRefreshToken(ctx, old.RefreshToken)
	require.NoError(t, err)
	require.True(t, got.Revoked())

	fresh, err := sr.GetByRefreshToken(ctx, replacement.RefreshToken)
	require.NoError(t, err)
	require.False(t, fresh.Revoked())
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	fr := repo.NewFileRepository(conn)

	_, err = ur.Create(ctx, model.User{ID: "files@example.com", PasswordHash: "hash", CreatedAt: time.Now()})
	require.NoError(t, err)

	f := model.File{
		ID:         uuid.New(),
		UserID:     "files@example.com",
		Name:       "report.pdf",
		Extension:  ".pdf",
		MimeType:   "application/pdf",
		Size:       1024,
		UploadedAt: time.Now(),
	}
	require.NoError(t, fr.Upsert(ctx, f))

	got, err := fr.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, f.Name, got.Name)

	// Upsert with the same id replaces the metadata.
	f.Name = "report-v2.pdf"
	f.Size = 2048
	require.NoError(t, fr.Upsert(ctx, f))

	got, err = fr.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "report-v2.pdf", got.Name)
	require.Equal(t, int64(2048), got.Size)

	list, err := fr.List(ctx, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	require.NoError(t, fr.Delete(ctx, f.ID))
	require.ErrorIs(t, fr.Delete(ctx, f.ID), model.ErrNotFound)
	_, err = fr.GetByID(ctx, f.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}
