package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/domain/upload"
)

// ProjectService is the project API used by the HTTP handlers.
type ProjectService interface {
	List(ctx context.Context, ownerID string) ([]project.Project, error)
	Create(ctx context.Context, ownerID string, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, ownerID, id string) (*project.Project, error)
	Update(ctx context.Context, ownerID, id string, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// SessionService is the session API used by the HTTP handlers.
type SessionService interface {
	Create(ctx context.Context, ownerID string, req session.CreateRequest) (*session.Session, error)
	Get(ctx context.Context, ownerID, id string) (*session.Session, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TakeService is the take API used by the HTTP handlers.
type TakeService interface {
	Create(ctx context.Context, ownerID string, req take.CreateRequest) (*take.Take, error)
	Get(ctx context.Context, ownerID, id string) (*take.Take, error)
	Update(ctx context.Context, ownerID, id string, req take.UpdateRequest) (*take.Take, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// UploadService stores audio uploads.
type UploadService interface {
	Upload(ctx context.Context, ownerID string, req upload.Request) (string, error)
	MaxBytes() int64
	TooLargeMessage() string
}

// ActivityService lists the activity log.
type ActivityService interface {
	Recent(ctx context.Context, ownerID string, opts activity.ListOptions) ([]activity.Entry, error)
}

// Options configures the HTTP surface.
type Options struct {
	Projects      ProjectService
	Sessions      SessionService
	Takes         TakeService
	Uploads       UploadService
	Activity      ActivityService
	Authenticator auth.Authenticator

	// Files serves stored uploads under FilesPrefix without authentication.
	Files       http.Handler
	FilesPrefix string
	// MCP, when set, is mounted at /mcp and authenticates on its own.
	MCP http.Handler
	// Health pings backing stores.
	Health func(ctx context.Context) error

	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	opts Options
}

// NewServer creates the HTTP router with middleware.
func NewServer(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if opts.Files != nil && opts.FilesPrefix != "" {
		prefix := "/" + strings.Trim(opts.FilesPrefix, "/")
		r.Handle(prefix+"/*", opts.Files)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.Authenticator))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", srv.listProjects)
			r.Post("/", srv.createProject)
			r.Get("/{id}", srv.getProject)
			r.Patch("/{id}", srv.updateProject)
			r.Delete("/{id}", srv.deleteProject)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", srv.createSession)
			r.Get("/{id}", srv.getSession)
			r.Delete("/{id}", srv.deleteSession)
		})
		r.Route("/takes", func(r chi.Router) {
			r.Post("/", srv.createTake)
			r.Get("/{id}", srv.getTake)
			r.Patch("/{id}", srv.updateTake)
			r.Delete("/{id}", srv.deleteTake)
		})
		r.Post("/upload", srv.upload)
		r.Get("/activity", srv.listActivity)
	})

	if len(opts.AllowedOrigins) == 0 {
		return r
	}
	return handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-User-ID", "Mcp-Session-Id"}),
		handlers.ExposedHeaders([]string{"Mcp-Session-Id"}),
	)(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			loggerFrom(r).Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type successBody struct {
	Success bool `json:"success"`
}
