package project

import (
	"strings"
	"time"

	"github.com/rpggio/tracksheet/internal/domain/session"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StartDateLayout is the month/day/year format start dates default to.
const StartDateLayout = "1/2/2006"

// Status is the production stage of a project
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusMixing     Status = "mixing"
	StatusMastering  Status = "mastering"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusInProgress, StatusMixing, StatusMastering, StatusCompleted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusMixing, StatusMastering, StatusCompleted:
		return true
	}
	return false
}

// statusLabels holds the title-cased label of every known status.
var statusLabels = func() map[Status]string {
	title := cases.Title(language.English)
	labels := make(map[Status]string, len(Statuses))
	for _, st := range Statuses {
		labels[st] = title.String(strings.ReplaceAll(string(st), "-", " "))
	}
	return labels
}()

// Label returns a human readable status, e.g. "In Progress". Unknown
// statuses are returned as-is.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStatus normalizes s. Empty means in-progress.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusInProgress, true
	}
	return st, st.Valid()
}

// Project is a body of recording work for one client
type Project struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Client    *string           `json:"client"`
	Status    Status            `json:"status"`
	Notes     *string           `json:"notes"`
	StartDate string            `json:"startDate"`
	CreatedAt time.Time         `json:"createdAt"`
	Sessions  []session.Session `json:"sessions,omitzero"`
}

// TakeCount returns the number of takes across all sessions.
func (p *Project) TakeCount() int {
	n := 0
	for _, s := range p.Sessions {
		n += len(s.Takes)
	}
	return n
}
