package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

type createTakeBody struct {
	SessionID     string     `json:"sessionId"`
	Name          string     `json:"name"`
	VersionNumber flexString `json:"versionNumber"`
	Notes         *string    `json:"notes"`
	Status        string     `json:"status"`
	FileURL       *string    `json:"fileUrl"`
}

type updateTakeBody struct {
	Name          *string    `json:"name"`
	VersionNumber flexString `json:"versionNumber"`
	Notes         flexString `json:"notes"`
	Status        *string    `json:"status"`
	FileURL       flexString `json:"fileUrl"`
}

func (s *Server) createTake(w http.ResponseWriter, r *http.Request) {
	var body createTakeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "Failed to create take")
		return
	}
	t, err := s.opts.Takes.Create(r.Context(), ownerFrom(r), take.CreateRequest{
		SessionID:     body.SessionID,
		Name:          body.Name,
		VersionNumber: body.VersionNumber.ptr(),
		Notes:         body.Notes,
		Status:        body.Status,
		FileURL:       body.FileURL,
	})
	if err != nil {
		writeError(w, r, err, "Failed to create take")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) getTake(w http.ResponseWriter, r *http.Request) {
	t, err := s.opts.Takes.Get(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch take")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTake(w http.ResponseWriter, r *http.Request) {
	var body updateTakeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "Failed to update take")
		return
	}
	t, err := s.opts.Takes.Update(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), take.UpdateRequest{
		Name:          body.Name,
		VersionNumber: body.VersionNumber.patch(),
		Notes:         body.Notes.patch(),
		Status:        body.Status,
		FileURL:       body.FileURL.patch(),
	})
	if err != nil {
		writeError(w, r, err, "Failed to update take")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTake(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Takes.Delete(r.Context(), ownerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Failed to delete take")
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
