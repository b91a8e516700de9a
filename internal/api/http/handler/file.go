package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
)

const maxUploadMemory = 32 << 20

// FileService defines file storage operations.
type FileService interface {
	Upload(ctx context.Context, params model.UploadFileParams) (model.File, error)
	Update(ctx context.Context, id uuid.UUID, params model.UploadFileParams) (model.File, error)
	List(ctx context.Context, page, listSize int) ([]model.File, error)
	GetDetails(ctx context.Context, id uuid.UUID) (model.File, error)
	Download(ctx context.Context, id uuid.UUID) (model.File, io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// File handles HTTP endpoints for file storage.
type File struct {
	fileService    FileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewFile creates a new File handler.
func NewFile(fileService FileService, contextManager model.ContextManager, logger *logger.Logger) *File {
	return &File{
		fileService:    fileService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type fileResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toFileResponse(f model.File) fileResponse {
	return fileResponse{
		ID:         f.ID.String(),
		Name:       f.Name,
		Extension:  f.Extension,
		MimeType:   f.MimeType,
		Size:       f.Size,
		UploadedAt: f.UploadedAt,
	}
}

// Upload stores a new file from a multipart form.
func (h *File) Upload(w http.ResponseWriter, r *http.Request) {
	params, closer, ok := h.multipartParams(w, r)
	if !ok {
		return
	}
	defer closer.Close()

	file, err := h.fileService.Upload(r.Context(), params)
	if err != nil {
		h.logger.Error("File handler: upload failed", "error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFileResponse(file))
}

// Update replaces an existing file's contents and metadata.
func (h *File) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	params, closer, ok := h.multipartParams(w, r)
	if !ok {
		return
	}
	defer closer.Close()

	file, err := h.fileService.Update(r.Context(), id, params)
	if err != nil {
		h.logger.Error("File handler: update failed",
			"file_id", id,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(file))
}

// List returns one page of file metadata. Defaults: page 1, list size 10.
func (h *File) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	listSize := queryInt(r, "list_size", 10)

	files, err := h.fileService.List(r.Context(), page, listSize)
	if err != nil {
		h.logger.Error("File handler: list failed", "error", err.Error())
		handleError(w, err)
		return
	}

	resp := make([]fileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDetails returns metadata for one file.
func (h *File) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	file, err := h.fileService.GetDetails(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponse(file))
}

// Download streams the file contents.
func (h *File) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	file, reader, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("File handler: download stream interrupted",
			"file_id", id,
			"error", err.Error())
	}
}

// Delete removes a file and its metadata.
func (h *File) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		h.logger.Error("File handler: delete failed",
			"file_id", id,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "File deleted successfully")
}

func (h *File) multipartParams(w http.ResponseWriter, r *http.Request) (model.UploadFileParams, io.Closer, bool) {
	session, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return model.UploadFileParams{}, nil, false
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return model.UploadFileParams{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return model.UploadFileParams{}, nil, false
	}

	return model.UploadFileParams{
		UserID:   session.UserID,
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Reader:   file,
	}, file, true
}

func (h *File) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
