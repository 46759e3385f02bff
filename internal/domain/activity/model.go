package activity

import "time"

// Type represents the kind of activity event
type Type string

const (
	TypeProjectCreated   Type = "project_created"
	TypeProjectUpdated   Type = "project_updated"
	TypeProjectDeleted   Type = "project_deleted"
	TypeSessionCreated   Type = "session_created"
	TypeSessionDeleted   Type = "session_deleted"
	TypeTakeCreated      Type = "take_created"
	TypeTakeUpdated      Type = "take_updated"
	TypeTakeDeleted      Type = "take_deleted"
	TypeFileRemoved      Type = "file_removed"
	TypeDeleteIncomplete Type = "delete_incomplete"
)

var knownTypes = map[Type]bool{
	TypeProjectCreated:   true,
	TypeProjectUpdated:   true,
	TypeProjectDeleted:   true,
	TypeSessionCreated:   true,
	TypeSessionDeleted:   true,
	TypeTakeCreated:      true,
	TypeTakeUpdated:      true,
	TypeTakeDeleted:      true,
	TypeFileRemoved:      true,
	TypeDeleteIncomplete: true,
}

// Valid reports whether t is a known activity type.
func (t Type) Valid() bool {
	return knownTypes[t]
}

// Entry represents an event in the activity log. ProjectID may be empty when
// the store derives it from SessionID.
type Entry struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"userId"`
	ProjectID string    `json:"projectId,omitempty"`
	SessionID *string   `json:"sessionId,omitempty"`
	TakeID    *string   `json:"takeId,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions filters activity listings.
type ListOptions struct {
	ProjectID string
	Type      *Type
	Limit     int
	Offset    int
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)
