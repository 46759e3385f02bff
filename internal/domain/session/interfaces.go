package session

import (
	"context"

	"github.com/rpggio/tracksheet/internal/domain/take"
)

// Repository provides owner-scoped persistence for sessions.
type Repository interface {
	// Create fails with repository.ErrNotFound when the project isn't owned by ownerID.
	Create(ctx context.Context, ownerID string, sess *Session) error
	// Get returns the session with its takes, oldest first.
	Get(ctx context.Context, ownerID, id string) (*Session, error)
	// Delete removes the session and its takes.
	Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error
}
