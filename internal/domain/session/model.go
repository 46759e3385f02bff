package session

import (
	"time"

	"github.com/rpggio/tracksheet/internal/domain/take"
)

// DateLayout is the calendar date format sessions are stored in.
const DateLayout = "2006-01-02"

// Session is one recording date within a project
type Session struct {
	ID            string      `json:"id"`
	ProjectID     string      `json:"projectId"`
	Date          string      `json:"date"`
	Duration      *string     `json:"duration"`
	EngineerNotes *string     `json:"engineerNotes"`
	GearUsed      *string     `json:"gearUsed"`
	CreatedAt     time.Time   `json:"createdAt"`
	Takes         []take.Take `json:"takes,omitzero"`
}
