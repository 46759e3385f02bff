package project

import (
	"context"

	"github.com/rpggio/tracksheet/internal/domain/take"
)

// Repository provides owner-scoped persistence for projects. Reads return
// projects with sessions and takes attached.
type Repository interface {
	Create(ctx context.Context, ownerID string, proj *Project) error
	Get(ctx context.Context, ownerID, id string) (*Project, error)
	// List orders projects newest first; sessions and takes oldest first.
	List(ctx context.Context, ownerID string) ([]Project, error)
	Update(ctx context.Context, ownerID string, proj *Project) error
	Delete(ctx context.Context, ownerID, id string, beforeCommit take.BeforeCommit) error
}
