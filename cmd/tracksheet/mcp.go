package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/spf13/cobra"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP over stdio for one owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return errors.New("--owner is required")
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			a, err := ctx.openApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting stdio transport", "owner", owner)
			server := a.MCPServer(auth.NewStaticAuthenticator(owner))
			if err := server.Run(runCtx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner id every tool call acts as")
	return cmd
}
