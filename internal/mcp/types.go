package mcp

import (
	"time"

	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

// Tool inputs. Optional fields carry omitempty so the inferred schema does
// not require them.

type GetProjectParams struct {
	ID string `json:"id" jsonschema:"project id"`
}

type CreateProjectParams struct {
	Name      string  `json:"name" jsonschema:"project name"`
	Client    *string `json:"client,omitempty" jsonschema:"client or artist"`
	Status    string  `json:"status,omitempty" jsonschema:"in-progress, mixing, mastering or completed (default in-progress)"`
	Notes     *string `json:"notes,omitempty" jsonschema:"free-form notes"`
	StartDate string  `json:"startDate,omitempty" jsonschema:"start date, defaults to today"`
}

type UpdateProjectParams struct {
	ID        string  `json:"id" jsonschema:"project id"`
	Name      *string `json:"name,omitempty" jsonschema:"new name"`
	Client    *string `json:"client,omitempty" jsonschema:"new client, empty string clears it"`
	Status    *string `json:"status,omitempty" jsonschema:"new status"`
	Notes     *string `json:"notes,omitempty" jsonschema:"new notes, empty string clears them"`
	StartDate *string `json:"startDate,omitempty" jsonschema:"new start date"`
}

type CreateSessionParams struct {
	ProjectID     string  `json:"projectId" jsonschema:"project the session belongs to"`
	Date          string  `json:"date" jsonschema:"session date, YYYY-MM-DD"`
	Duration      *string `json:"duration,omitempty" jsonschema:"length in hours, e.g. 3.5"`
	EngineerNotes *string `json:"engineerNotes,omitempty" jsonschema:"engineer notes"`
	GearUsed      *string `json:"gearUsed,omitempty" jsonschema:"microphones, preamps and outboard used"`
}

type CreateTakeParams struct {
	SessionID     string  `json:"sessionId" jsonschema:"session the take belongs to"`
	Name          string  `json:"name" jsonschema:"take name, e.g. Lead Vocal"`
	VersionNumber *string `json:"versionNumber,omitempty" jsonschema:"version label"`
	Notes         *string `json:"notes,omitempty" jsonschema:"take notes"`
	Status        string  `json:"status,omitempty" jsonschema:"keep, maybe or reject (default keep)"`
	FileURL       *string `json:"fileUrl,omitempty" jsonschema:"url returned by your own upload, not attached to another take"`
}

type UpdateTakeParams struct {
	ID            string  `json:"id" jsonschema:"take id"`
	Name          *string `json:"name,omitempty" jsonschema:"new name"`
	VersionNumber *string `json:"versionNumber,omitempty" jsonschema:"new version label, empty string clears it"`
	Notes         *string `json:"notes,omitempty" jsonschema:"new notes, empty string clears them"`
	Status        *string `json:"status,omitempty" jsonschema:"keep, maybe or reject"`
	FileURL       *string `json:"fileUrl,omitempty" jsonschema:"new file url, empty string detaches and deletes the file"`
}

type DeleteTakeParams struct {
	ID string `json:"id" jsonschema:"take id"`
}

type RecentActivityParams struct {
	ProjectID string `json:"projectId,omitempty" jsonschema:"only activity for this project"`
	Type      string `json:"type,omitempty" jsonschema:"only this activity type, e.g. take_created"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum entries (default 50, max 200)"`
	Offset    int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

// Tool outputs.

type TakeView struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"sessionId"`
	Name          string  `json:"name"`
	VersionNumber *string `json:"versionNumber,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Status        string  `json:"status"`
	FileURL       *string `json:"fileUrl,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

type SessionView struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	Date          string     `json:"date"`
	Duration      *string    `json:"duration,omitempty"`
	EngineerNotes *string    `json:"engineerNotes,omitempty"`
	GearUsed      *string    `json:"gearUsed,omitempty"`
	CreatedAt     string     `json:"createdAt"`
	Takes         []TakeView `json:"takes,omitempty"`
}

type ProjectView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Client      *string       `json:"client,omitempty"`
	Status      string        `json:"status"`
	StatusLabel string        `json:"statusLabel"`
	Notes       *string       `json:"notes,omitempty"`
	StartDate   string        `json:"startDate"`
	CreatedAt   string        `json:"createdAt"`
	TakeCount   int           `json:"takeCount"`
	Sessions    []SessionView `json:"sessions,omitempty"`
}

type ActivityView struct {
	ID        int64   `json:"id"`
	ProjectID string  `json:"projectId,omitempty"`
	SessionID *string `json:"sessionId,omitempty"`
	TakeID    *string `json:"takeId,omitempty"`
	Type      string  `json:"type"`
	Summary   string  `json:"summary"`
	Details   string  `json:"details,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type ProjectList struct {
	Projects []ProjectView `json:"projects"`
}

type ActivityList struct {
	Entries []ActivityView `json:"entries"`
}

type DeleteResult struct {
	Success bool `json:"success"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func takeView(t take.Take) TakeView {
	return TakeView{
		ID:            t.ID,
		SessionID:     t.SessionID,
		Name:          t.Name,
		VersionNumber: t.VersionNumber,
		Notes:         t.Notes,
		Status:        string(t.Status),
		FileURL:       t.FileURL,
		CreatedAt:     formatTime(t.CreatedAt),
	}
}

func sessionView(s session.Session) SessionView {
	view := SessionView{
		ID:            s.ID,
		ProjectID:     s.ProjectID,
		Date:          s.Date,
		Duration:      s.Duration,
		EngineerNotes: s.EngineerNotes,
		GearUsed:      s.GearUsed,
		CreatedAt:     formatTime(s.CreatedAt),
	}
	for _, t := range s.Takes {
		view.Takes = append(view.Takes, takeView(t))
	}
	return view
}

func projectView(p project.Project) ProjectView {
	view := ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Client:      p.Client,
		Status:      string(p.Status),
		StatusLabel: p.Status.Label(),
		Notes:       p.Notes,
		StartDate:   p.StartDate,
		CreatedAt:   formatTime(p.CreatedAt),
		TakeCount:   p.TakeCount(),
	}
	for _, s := range p.Sessions {
		view.Sessions = append(view.Sessions, sessionView(s))
	}
	return view
}

func activityView(e activity.Entry) ActivityView {
	return ActivityView{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		SessionID: e.SessionID,
		TakeID:    e.TakeID,
		Type:      string(e.Type),
		Summary:   e.Summary,
		Details:   e.Details,
		CreatedAt: formatTime(e.CreatedAt),
	}
}
