package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/tracksheet/internal/domain/session"
)

type createSessionBody struct {
	ProjectID     string     `json:"projectId"`
	Date          string     `json:"date"`
	Duration      flexString `json:"duration"`
	EngineerNotes *string    `json:"engineerNotes"`
	GearUsed      *string    `json:"gearUsed"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "Failed to create session")
		return
	}
	sess, err := s.opts.Sessions.Create(r.Context(), ownerFrom(r), session.CreateRequest{
		ProjectID:     body.ProjectID,
		Date:          body.Date,
		Duration:      body.Duration.ptr(),
		EngineerNotes: body.EngineerNotes,
		GearUsed:      body.GearUsed,
	})
	if err != nil {
		writeError(w, r, err, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.opts.Sessions.Get(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Sessions.Delete(r.Context(), ownerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Failed to delete session")
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
