// Package app wires configuration, stores and services into the HTTP and MCP
// surfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/config"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/domain/upload"
	"github.com/rpggio/tracksheet/internal/mcp"
	"github.com/rpggio/tracksheet/internal/postgres"
	"github.com/rpggio/tracksheet/internal/sqlite"
	"github.com/rpggio/tracksheet/internal/storage"
	"github.com/rpggio/tracksheet/internal/transport"
)

// Version is reported to MCP clients.
var Version = "dev"

// Store is a migrated database behind the repositories.
type Store interface {
	Ping(ctx context.Context) error
	Close() error
}

// Repositories groups the store implementations of each domain.
type Repositories struct {
	Projects project.Repository
	Sessions session.Repository
	Takes    take.Repository
	Uploads  UploadRepository
	Activity activity.Repository
	APIKeys  auth.KeyRepository
}

// UploadRepository records uploads and answers who owns them.
type UploadRepository interface {
	upload.Repository
	take.UploadRepository
}

// App holds the wired services.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Projects *project.Service
	Sessions *session.Service
	Takes    *take.Service
	Uploads  *upload.Service
	Activity *activity.Service
	Keys     *auth.KeyService

	Authenticator auth.Authenticator
	Files         *storage.LocalStorage

	store Store
}

// OpenStore opens and migrates the configured database.
func OpenStore(ctx context.Context, cfg config.DBConfig) (Store, Repositories, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, Repositories{}, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, Repositories{}, err
		}
		return db, Repositories{
			Projects: db.Projects(),
			Sessions: db.Sessions(),
			Takes:    db.Takes(),
			Uploads:  db.Uploads(),
			Activity: db.Activity(),
			APIKeys:  db.APIKeys(),
		}, nil
	default:
		if err := ensureDBDir(cfg.Path); err != nil {
			return nil, Repositories{}, fmt.Errorf("failed to prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, Repositories{}, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, Repositories{}, err
		}
		return db, Repositories{
			Projects: sqlite.NewProjectRepository(db),
			Sessions: sqlite.NewSessionRepository(db),
			Takes:    sqlite.NewTakeRepository(db),
			Uploads:  sqlite.NewUploadRepository(db),
			Activity: sqlite.NewActivityRepository(db),
			APIKeys:  sqlite.NewAPIKeyRepository(db),
		}, nil
	}
}

// Open connects the configured store and builds every service.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	store, repos, err := OpenStore(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, store, repos, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// New builds services over already opened repositories.
func New(cfg config.Config, store Store, repos Repositories, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	files, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.URLPrefix)
	if err != nil {
		return nil, err
	}
	authn, err := auth.New(cfg.Auth.Mode, cfg.Auth.Header, cfg.Auth.DefaultOwner, repos.APIKeys)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Projects:      project.NewService(repos.Projects, files, repos.Activity, logger.With("component", "project")),
		Sessions:      session.NewService(repos.Sessions, files, repos.Activity, logger.With("component", "session")),
		Takes:         take.NewService(repos.Takes, files, repos.Uploads, repos.Activity, logger.With("component", "take")),
		Uploads:       upload.NewService(files, repos.Uploads, cfg.Upload.MaxBytes, logger.With("component", "upload")),
		Activity:      activity.NewService(repos.Activity, logger.With("component", "activity")),
		Keys:          auth.NewKeyService(repos.APIKeys),
		Authenticator: authn,
		Files:         files,
		store:         store,
	}, nil
}

// MCPServer returns an MCP server that resolves callers with authn.
func (a *App) MCPServer(authn auth.Authenticator) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: a.Projects,
			Sessions: a.Sessions,
			Takes:    a.Takes,
			Activity: a.Activity,
		},
		Authenticator: authn,
		Version:       Version,
		Logger:        a.Logger.With("component", "mcp"),
	})
}

// Handler returns the HTTP API with MCP mounted at /mcp.
func (a *App) Handler() http.Handler {
	return transport.NewServer(transport.Options{
		Projects:       a.Projects,
		Sessions:       a.Sessions,
		Takes:          a.Takes,
		Uploads:        a.Uploads,
		Activity:       a.Activity,
		Authenticator:  a.Authenticator,
		Files:          a.Files.Handler(),
		FilesPrefix:    a.Files.Prefix(),
		MCP:            mcp.NewHTTPHandler(a.MCPServer(a.Authenticator)),
		Health:         a.store.Ping,
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		Logger:         a.Logger.With("component", "http"),
	})
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
