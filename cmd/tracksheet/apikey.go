package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rpggio/tracksheet/internal/app"
	"github.com/rpggio/tracksheet/internal/auth"
	"github.com/spf13/cobra"
)

func newAPIKeyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newAPIKeyCreateCommand(ctx))
	cmd.AddCommand(newAPIKeyListCommand(ctx))
	cmd.AddCommand(newAPIKeyRevokeCommand(ctx))
	return cmd
}

func withKeys(cmd *cobra.Command, ctx *commandContext, fn func(*auth.KeyService) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, repos, err := app.OpenStore(cmd.Context(), cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(auth.NewKeyService(repos.APIKeys))
}

func newAPIKeyCreateCommand(ctx *commandContext) *cobra.Command {
	var owner, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a key for an owner; the token is shown once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return errors.New("--owner is required")
			}
			return withKeys(cmd, ctx, func(keys *auth.KeyService) error {
				key, token, err := keys.Create(cmd.Context(), owner, description)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created key %s for %s\n", key.ID, key.OwnerID)
				fmt.Fprintf(out, "Token: %s\n", token)
				fmt.Fprintln(out, "Store it now; it cannot be shown again.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner id the key acts as")
	cmd.Flags().StringVar(&description, "description", "", "Free-form note")
	return cmd
}

func newAPIKeyListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(cmd, ctx, func(keys *auth.KeyService) error {
				list, err := keys.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No API keys")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyTable(list, time.Now()))
				return nil
			})
		},
	}
}

func newAPIKeyRevokeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeys(cmd, ctx, func(keys *auth.KeyService) error {
				if err := keys.Revoke(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s\n", args[0])
				return nil
			})
		},
	}
}

func renderKeyTable(keys []auth.APIKey, now time.Time) string {
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = humanize.RelTime(*k.LastUsedAt, now, "ago", "from now")
		}
		rows = append(rows, []string{k.ID, k.OwnerID, k.Description, humanize.RelTime(k.CreatedAt, now, "ago", "from now"), lastUsed})
	}
	return renderTable([]string{"ID", "Owner", "Description", "Created", "Last used"}, rows, nil)
}
