package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/domain/upload"
)

// errBadJSON marks an unreadable request body.
var errBadJSON = errors.New("invalid JSON body")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes. ok is false for
// unexpected errors.
func statusFor(err error) (int, bool) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrProjectNotFound),
		errors.Is(err, take.ErrTakeNotFound),
		errors.Is(err, take.ErrSessionNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, take.ErrInvalidInput),
		errors.Is(err, upload.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, errBadJSON):
		return http.StatusBadRequest, true
	case errors.Is(err, upload.ErrTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, true
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, true
	}
	return http.StatusInternalServerError, false
}

// writeError reports err to the client. Unexpected errors are logged and
// replaced by failure, e.g. "Failed to create project".
func writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	status, known := statusFor(err)
	if !known {
		loggerFrom(r).Error(failure, "error", err)
		writeJSON(w, status, errorBody{Error: failure})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
