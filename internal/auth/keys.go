package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyService issues and revokes API keys.
type KeyService struct {
	repo KeyRepository
}

// NewKeyService creates a key service.
func NewKeyService(repo KeyRepository) *KeyService {
	return &KeyService{repo: repo}
}

// Create issues a key for ownerID. The returned token is shown once.
func (s *KeyService) Create(ctx context.Context, ownerID, description string) (*APIKey, string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, "", fmt.Errorf("owner is required")
	}
	token, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}
	key := &APIKey{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, key, HashToken(token)); err != nil {
		return nil, "", fmt.Errorf("storing api key: %w", err)
	}
	return key, token, nil
}

// List returns all keys.
func (s *KeyService) List(ctx context.Context) ([]APIKey, error) {
	return s.repo.List(ctx)
}

// Revoke deletes a key.
func (s *KeyService) Revoke(ctx context.Context, id string) error {
	return s.repo.Revoke(ctx, id)
}
