package handler

import (
	"errors"
	"net/http"

	"github.com/avolkov/filebox-server/internal/model"
)

// errorStatus pairs a business sentinel with its HTTP outcome. Order
// matters: the first match wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{model.ErrMissingRefreshToken, http.StatusBadRequest},
	{model.ErrInvalidRevokeTarget, http.StatusBadRequest},
	{model.ErrUserAlreadyExists, http.StatusConflict},
	{model.ErrInvalidUserID, http.StatusUnauthorized},
	{model.ErrInvalidPassword, http.StatusUnauthorized},
	{model.ErrTokenMalformed, http.StatusUnauthorized},
	{model.ErrTokenSignatureInvalid, http.StatusUnauthorized},
	{model.ErrTokenExpired, http.StatusUnauthorized},
	{model.ErrTokenPayloadInvalid, http.StatusUnauthorized},
	{model.ErrRefreshTokenInvalid, http.StatusUnauthorized},
	{model.ErrRefreshTokenExpired, http.StatusUnauthorized},
	{model.ErrSessionRevoked, http.StatusUnauthorized},
	{model.ErrMissingAuthHeader, http.StatusUnauthorized},
	{model.ErrSessionNotFoundOrRevoked, http.StatusNotFound},
	{model.ErrNotFound, http.StatusNotFound},
}

// handleError recovers business sentinels into tagged HTTP outcomes and
// collapses everything else into an opaque 500.
func handleError(w http.ResponseWriter, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
