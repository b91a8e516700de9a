package handler

import (
	"net/http"

	"github.com/avolkov/filebox-server/internal/model"
)

// Info reports the authenticated user id.
type Info struct {
	contextManager model.ContextManager
}

// NewInfo creates a new Info handler.
func NewInfo(contextManager model.ContextManager) *Info {
	return &Info{contextManager: contextManager}
}

func (h *Info) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.contextManager.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": session.UserID})
}
