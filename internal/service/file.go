package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
)

// File implements file metadata plus object-storage operations. Metadata
// rows live in the file store; the bytes live in object storage keyed by
// id+extension.
type File struct {
	files   model.FileStore
	storage model.Storage
	logger  *logger.Logger
	now     func() time.Time
}

func NewFile(files model.FileStore, storage model.Storage, logger *logger.Logger) *File {
	return &File{
		files:   files,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload stores the file contents and upserts the metadata row under a
// fresh id.
func (s *File) Upload(ctx context.Context, params model.UploadFileParams) (model.File, error) {
	return s.store(ctx, uuid.New(), params)
}

// Update replaces an existing file in place: the previous object is removed
// before the new contents are written, because the replacement may carry a
// different extension and therefore a different storage key.
func (s *File) Update(ctx context.Context, id uuid.UUID, params model.UploadFileParams) (model.File, error) {
	existing, err := s.files.GetByID(ctx, id)
	if err != nil {
		return model.File{}, err
	}

	if err := s.storage.Delete(ctx, existing.StorageKey()); err != nil {
		return model.File{}, fmt.Errorf("failed to delete previous object: %w", err)
	}

	return s.store(ctx, id, params)
}

func (s *File) store(ctx context.Context, id uuid.UUID, params model.UploadFileParams) (model.File, error) {
	file := model.File{
		ID:         id,
		UserID:     params.UserID,
		Name:       params.Name,
		Extension:  filepath.Ext(params.Name),
		MimeType:   params.MimeType,
		Size:       params.Size,
		UploadedAt: s.now(),
	}

	if err := s.storage.Upload(ctx, file.StorageKey(), params.Reader); err != nil {
		return model.File{}, fmt.Errorf("failed to upload object: %w", err)
	}

	if err := s.files.Upsert(ctx, file); err != nil {
		return model.File{}, fmt.Errorf("failed to upsert file record: %w", err)
	}

	s.logger.Info("File service: file stored",
		"file_id", file.ID,
		"user_id", file.UserID,
		"size", file.Size)

	return file, nil
}

// List returns one page of file metadata.
func (s *File) List(ctx context.Context, page, listSize int) ([]model.File, error) {
	files, err := s.files.List(ctx, page, listSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// GetDetails returns metadata for one file.
func (s *File) GetDetails(ctx context.Context, id uuid.UUID) (model.File, error) {
	return s.files.GetByID(ctx, id)
}

// Download returns the file metadata and a reader over its contents. The
// caller closes the reader.
func (s *File) Download(ctx context.Context, id uuid.UUID) (model.File, io.ReadCloser, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return model.File{}, nil, err
	}

	reader, err := s.storage.Download(ctx, file.StorageKey())
	if err != nil {
		return model.File{}, nil, fmt.Errorf("failed to download object: %w", err)
	}

	return file, reader, nil
}

// Delete removes the object first, then the metadata row.
func (s *File) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StorageKey()); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	if err := s.files.Delete(ctx, file.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	s.logger.Info("File service: file deleted", "file_id", file.ID)

	return nil
}
