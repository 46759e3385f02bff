package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracksheet/internal/auth"
)

// authMiddleware resolves the caller for tool calls. Protocol methods and doc
// reads pass through unauthenticated.
func authMiddleware(authn auth.Authenticator, logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method != "tools/call" {
				return next(ctx, method, req)
			}

			header := http.Header{}
			if extra := req.GetExtra(); extra != nil && extra.Header != nil {
				header = extra.Header
			}

			ownerID, err := authn.Authenticate(ctx, header)
			if err != nil || ownerID == "" {
				if err != nil && !errors.Is(err, auth.ErrUnauthorized) {
					logger.Error("mcp authentication failed", "error", err)
				}
				return nil, auth.ErrUnauthorized
			}

			return next(auth.WithOwner(ctx, ownerID), method, req)
		}
	}
}

func ownerFrom(ctx context.Context) string {
	ownerID, _ := auth.OwnerFromContext(ctx)
	return ownerID
}
