package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avolkov/filebox-server/internal/model"
)

var _ model.FileStore = (*FileRepository)(nil)

type FileRepository struct {
	db *Connection
}

func NewFileRepository(db *Connection) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Upsert(ctx context.Context, file model.File) error {
	const query = `
        INSERT INTO files (id, user_id, name, extension, mime_type, size, uploaded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            extension = EXCLUDED.extension,
            mime_type = EXCLUDED.mime_type,
            size = EXCLUDED.size,
            uploaded_at = EXCLUDED.uploaded_at
    `

	_, err := r.db.querier(ctx).Exec(ctx, query,
		file.ID, file.UserID, file.Name, file.Extension, file.MimeType, file.Size, file.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (model.File, error) {
	const query = `
        SELECT id, user_id, name, extension, mime_type, size, uploaded_at
        FROM files WHERE id = $1
    `
	var f model.File
	err := r.db.querier(ctx).QueryRow(ctx, query, id).Scan(
		&f.ID, &f.UserID, &f.Name, &f.Extension, &f.MimeType, &f.Size, &f.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.File{}, model.ErrNotFound
		}
		return model.File{}, fmt.Errorf("failed to get file by id: %w", err)
	}
	return f, nil
}

func (r *FileRepository) List(ctx context.Context, page, listSize int) ([]model.File, error) {
	const query = `
        SELECT id, user_id, name, extension, mime_type, size, uploaded_at
        FROM files ORDER BY uploaded_at DESC LIMIT $1 OFFSET $2
    `
	offset := (page - 1) * listSize

	rows, err := r.db.querier(ctx).Query(ctx, query, listSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := make([]model.File, 0, listSize)
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Extension, &f.MimeType, &f.Size, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file rows: %w", err)
	}
	return files, nil
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM files WHERE id = $1`

	tag, err := r.db.querier(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
