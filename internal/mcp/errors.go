package mcp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recoveryHint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// it does not recognize.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, session.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, take.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", RecoveryHint: "Call get_project to see its sessions"}
	case errors.Is(err, take.ErrTakeNotFound):
		return &APIError{Code: "TAKE_NOT_FOUND", Message: "take not found", RecoveryHint: "Call get_project to see its takes"}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, take.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, auth.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "unauthorized", RecoveryHint: "Send a valid API key"}
	default:
		return nil
	}
}

// toolError converts err for a tool result. Unknown errors are logged and
// hidden behind a generic message.
func toolError(logger *slog.Logger, tool string, err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	logger.Error("mcp tool failed", "tool", tool, "error", err)
	return &APIError{Code: "INTERNAL", Message: "internal error"}
}
