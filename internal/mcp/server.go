package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context, ownerID string) ([]project.Project, error)
	Create(ctx context.Context, ownerID string, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, ownerID, id string) (*project.Project, error)
	Update(ctx context.Context, ownerID, id string, req project.UpdateRequest) (*project.Project, error)
}

// SessionService defines session operations needed by MCP.
type SessionService interface {
	Create(ctx context.Context, ownerID string, req session.CreateRequest) (*session.Session, error)
}

// TakeService defines take operations needed by MCP.
type TakeService interface {
	Create(ctx context.Context, ownerID string, req take.CreateRequest) (*take.Take, error)
	Update(ctx context.Context, ownerID, id string, req take.UpdateRequest) (*take.Take, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Recent(ctx context.Context, ownerID string, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Sessions SessionService
	Takes    TakeService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	// Authenticator resolves the owner of each tool call. Stdio mode passes
	// a static authenticator.
	Authenticator auth.Authenticator
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tracksheet",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(authMiddleware(cfg.Authenticator, cfg.Logger))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
