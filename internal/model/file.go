package model

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileStore defines persistence operations for file metadata.
type FileStore interface {
	Upsert(ctx context.Context, file File) error
	GetByID(ctx context.Context, id uuid.UUID) (File, error)
	List(ctx context.Context, page, listSize int) ([]File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// File represents stored file metadata; the bytes live in object storage
// under StorageKey.
type File struct {
	ID         uuid.UUID
	UserID     string
	Name       string
	Extension  string
	MimeType   string
	Size       int64
	UploadedAt time.Time
}

// StorageKey is the object-storage key for the file contents.
func (f File) StorageKey() string {
	return f.ID.String() + f.Extension
}

// UploadFileParams contains parameters to store a file.
type UploadFileParams struct {
	UserID   string
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// Storage stores raw file contents addressed by key.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
