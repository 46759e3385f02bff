package take

import (
	"strings"
	"time"
)

// Status is the engineer's verdict on a take
type Status string

const (
	StatusKeep   Status = "keep"
	StatusMaybe  Status = "maybe"
	StatusReject Status = "reject"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusKeep, StatusMaybe, StatusReject:
		return true
	}
	return false
}

// Color returns the display color for a status.
func (s Status) Color() string {
	switch s {
	case StatusKeep:
		return "green"
	case StatusMaybe:
		return "yellow"
	case StatusReject:
		return "red"
	default:
		return "gray"
	}
}

// ParseStatus normalizes s. Empty means keep.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusKeep, true
	}
	return st, st.Valid()
}

// Take is a single recorded attempt within a session
type Take struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Name          string    `json:"name"`
	VersionNumber *string   `json:"versionNumber"`
	Notes         *string   `json:"notes"`
	Status        Status    `json:"status"`
	FileURL       *string   `json:"fileUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}
