package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/filebox-server/internal/mocks"
	"github.com/avolkov/filebox-server/internal/model"
	"github.com/avolkov/filebox-server/internal/testutil"
)

func TestFile_Upload(t *testing.T) {
	ctx := context.Background()

	files := &mocks.FileStore{}
	storage := &mocks.Storage{}

	reader := strings.NewReader("contents")

	storage.On("Upload", ctx, mock.AnythingOfType("string"), reader).Return(nil).Once()

	var upserted model.File
	files.On("Upsert", ctx, mock.AnythingOfType("model.File")).
		Run(func(args mock.Arguments) { upserted = args.Get(1).(model.File) }).
		Return(nil).Once()

	svc := NewFile(files, storage, testutil.MakeNoopLogger())

	file, err := svc.Upload(ctx, model.UploadFileParams{
		UserID:   "a@x.com",
		Name:     "report.pdf",
		MimeType: "application/pdf",
		Size:     8,
		Reader:   reader,
	})
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", file.Name)
	assert.Equal(t, ".pdf", file.Extension)
	assert.Equal(t, file.ID.String()+".pdf", file.StorageKey())
	assert.Equal(t, file, upserted)

	storage.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestFile_Update_ReplacesObject(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	files := &mocks.FileStore{}
	storage := &mocks.Storage{}

	existing := model.File{ID: id, UserID: "a@x.com", Name: "old.txt", Extension: ".txt"}
	files.On("GetByID", ctx, id).Return(existing, nil).Once()
	storage.On("Delete", ctx, existing.StorageKey()).Return(nil).Once()

	reader := strings.NewReader("new contents")
	storage.On("Upload", ctx, id.String()+".md", reader).Return(nil).Once()
	files.On("Upsert", ctx, mock.AnythingOfType("model.File")).Return(nil).Once()

	svc := NewFile(files, storage, testutil.MakeNoopLogger())

	file, err := svc.Update(ctx, id, model.UploadFileParams{
		UserID:   "a@x.com",
		Name:     "notes.md",
		MimeType: "text/markdown",
		Size:     12,
		Reader:   reader,
	})
	require.NoError(t, err)
	assert.Equal(t, id, file.ID)
	assert.Equal(t, ".md", file.Extension)

	storage.AssertExpectations(t)
}

func TestFile_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	files := &mocks.FileStore{}
	storage := &mocks.Storage{}
	files.On("GetByID", ctx, id).Return(model.File{}, model.ErrNotFound).Once()

	svc := NewFile(files, storage, testutil.MakeNoopLogger())

	_, err := svc.Update(ctx, id, model.UploadFileParams{Name: "x.txt"})
	require.ErrorIs(t, err, model.ErrNotFound)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestFile_Download(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	files := &mocks.FileStore{}
	storage := &mocks.Storage{}

	meta := model.File{ID: id, Name: "report.pdf", Extension: ".pdf"}
	files.On("GetByID", ctx, id).Return(meta, nil).Once()
	storage.On("Download", ctx, meta.StorageKey()).
		Return(io.NopCloser(strings.NewReader("contents")), nil).Once()

	svc := NewFile(files, storage, testutil.MakeNoopLogger())

	file, reader, err := svc.Download(ctx, id)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, meta, file)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
}

func TestFile_Download_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	files := &mocks.FileStore{}
	files.On("GetByID", ctx, id).Return(model.File{}, model.ErrNotFound).Once()

	svc := NewFile(files, &mocks.Storage{}, testutil.MakeNoopLogger())

	_, _, err := svc.Download(ctx, id)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestFile_Delete_ObjectFirst(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	files := &mocks.FileStore{}
	storage := &mocks.Storage{}

	meta := model.File{ID: id, Name: "report.pdf", Extension: ".pdf"}
	files.On("GetByID", ctx, id).Return(meta, nil).Once()

	var objectDeleted bool
	storage.On("Delete", ctx, meta.StorageKey()).
		Run(func(mock.Arguments) { objectDeleted = true }).
		Return(nil).Once()
	files.On("Delete", ctx, id).
		Run(func(mock.Arguments) { require.True(t, objectDeleted) }).
		Return(nil).Once()

	svc := NewFile(files, storage, testutil.MakeNoopLogger())

	require.NoError(t, svc.Delete(ctx, id))
	storage.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestFile_List(t *testing.T) {
	ctx := context.Background()

	files := &mocks.FileStore{}
	expected := []model.File{{Name: "a.txt"}, {Name: "b.txt"}}
	files.On("List", ctx, 1, 10).Return(expected, nil).Once()

	svc := NewFile(files, &mocks.Storage{}, testutil.MakeNoopLogger())

	got, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
