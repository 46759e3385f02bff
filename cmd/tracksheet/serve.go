package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with MCP at /mcp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			a, err := ctx.openApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.Config
			server := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      a.Handler(),
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
				IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening",
					"addr", server.Addr,
					"db_driver", cfg.DB.Driver,
					"auth_mode", cfg.Auth.Mode,
					"upload_limit", humanize.IBytes(uint64(cfg.Upload.MaxBytes)))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			return waitForShutdown(logger, server, errCh)
		},
	}
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
