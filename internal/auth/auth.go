package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized is returned when a request carries no usable identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrKeyNotFound is returned when an API key doesn't exist.
	ErrKeyNotFound = errors.New("api key not found")
)

// Modes accepted by New.
const (
	ModeAPIKey = "apikey"
	ModeHeader = "header"
	ModeNone   = "none"
)

// DefaultHeader is the gateway header used in header mode.
const DefaultHeader = "X-User-ID"

// TokenPrefix marks generated API keys.
const TokenPrefix = "tsk_"

// Authenticator resolves the owner of a request from its headers.
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header) (string, error)
}

// KeyResolver maps a hashed API key to its owner.
type KeyResolver interface {
	ResolveOwner(ctx context.Context, keyHash string) (string, error)
}

// APIKey is a stored key. The token itself is never persisted.
type APIKey struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
}

// KeyRepository manages API keys.
type KeyRepository interface {
	KeyResolver
	Create(ctx context.Context, key *APIKey, keyHash string) error
	List(ctx context.Context) ([]APIKey, error)
	Revoke(ctx context.Context, id string) error
}

// New builds the authenticator for mode.
func New(mode, header, defaultOwner string, keys KeyResolver) (Authenticator, error) {
	switch mode {
	case ModeAPIKey, "":
		if keys == nil {
			return nil, fmt.Errorf("apikey auth needs a key store")
		}
		return &APIKeyAuthenticator{keys: keys}, nil
	case ModeHeader:
		if strings.TrimSpace(header) == "" {
			header = DefaultHeader
		}
		return &HeaderAuthenticator{name: header}, nil
	case ModeNone:
		if strings.TrimSpace(defaultOwner) == "" {
			return nil, fmt.Errorf("auth mode none needs a default owner")
		}
		return &StaticAuthenticator{ownerID: defaultOwner}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}

// APIKeyAuthenticator accepts "Authorization: Bearer <token>".
type APIKeyAuthenticator struct {
	keys KeyResolver
}

// NewAPIKeyAuthenticator creates an authenticator backed by keys.
func NewAPIKeyAuthenticator(keys KeyResolver) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{keys: keys}
}

func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, header http.Header) (string, error) {
	token := BearerToken(header)
	if token == "" {
		return "", ErrUnauthorized
	}
	owner, err := a.keys.ResolveOwner(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if owner == "" {
		return "", ErrUnauthorized
	}
	return owner, nil
}

// HeaderAuthenticator trusts an identity header set by an upstream gateway.
type HeaderAuthenticator struct {
	name string
}

// NewHeaderAuthenticator creates an authenticator reading the named header.
func NewHeaderAuthenticator(name string) *HeaderAuthenticator {
	return &HeaderAuthenticator{name: name}
}

func (a *HeaderAuthenticator) Authenticate(_ context.Context, header http.Header) (string, error) {
	owner := strings.TrimSpace(header.Get(a.name))
	if owner == "" {
		return "", ErrUnauthorized
	}
	return owner, nil
}

// StaticAuthenticator assigns every request to one owner.
type StaticAuthenticator struct {
	ownerID string
}

// NewStaticAuthenticator creates an authenticator that always returns ownerID.
func NewStaticAuthenticator(ownerID string) *StaticAuthenticator {
	return &StaticAuthenticator{ownerID: ownerID}
}

func (a *StaticAuthenticator) Authenticate(context.Context, http.Header) (string, error) {
	return a.ownerID, nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(header http.Header) string {
	if header == nil {
		return ""
	}
	value := strings.TrimSpace(header.Get("Authorization"))
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// HashToken returns the hex SHA-256 of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns a new random API key.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(b), nil
}

type ownerKey struct{}

// WithOwner stores the authenticated owner in ctx.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner stored by WithOwner.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok && owner != ""
}
