package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/tracksheet/internal/domain/project"
)

type createProjectBody struct {
	Name      string  `json:"name"`
	Client    *string `json:"client"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
	StartDate string  `json:"startDate"`
}

type updateProjectBody struct {
	Name      *string    `json:"name"`
	Client    flexString `json:"client"`
	Status    *string    `json:"status"`
	Notes     flexString `json:"notes"`
	StartDate *string    `json:"startDate"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.opts.Projects.List(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, r, err, "Failed to fetch projects")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var body createProjectBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "Failed to create project")
		return
	}
	proj, err := s.opts.Projects.Create(r.Context(), ownerFrom(r), project.CreateRequest{
		Name:      body.Name,
		Client:    body.Client,
		Status:    body.Status,
		Notes:     body.Notes,
		StartDate: body.StartDate,
	})
	if err != nil {
		writeError(w, r, err, "Failed to create project")
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.opts.Projects.Get(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch project")
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var body updateProjectBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "Failed to update project")
		return
	}
	proj, err := s.opts.Projects.Update(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), project.UpdateRequest{
		Name:      body.Name,
		Client:    body.Client.patch(),
		Status:    body.Status,
		Notes:     body.Notes.patch(),
		StartDate: body.StartDate,
	})
	if err != nil {
		writeError(w, r, err, "Failed to update project")
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Projects.Delete(r.Context(), ownerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Failed to delete project")
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
