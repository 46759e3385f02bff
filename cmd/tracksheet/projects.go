package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/take"
	"github.com/rpggio/tracksheet/internal/textutil"
	"github.com/spf13/cobra"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Show an owner's projects, sessions and takes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(owner) == "" {
				return errors.New("--owner is required")
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			a, err := ctx.openApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			projects, err := a.Projects.List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}
			fmt.Fprintln(out, renderProjectTree(projects, isTerminal(os.Stdout)))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner id to list")
	return cmd
}

var statusColors = map[string]text.Colors{
	"green":  {text.FgGreen},
	"yellow": {text.FgYellow},
	"red":    {text.FgRed},
	"gray":   {text.FgHiBlack},
}

func takeStatus(s take.Status, colorize bool) string {
	if !colorize {
		return string(s)
	}
	return statusColors[s.Color()].Sprint(string(s))
}

// renderProjectTree renders one row per project, session and take, indented
// by depth.
func renderProjectTree(projects []project.Project, colorize bool) string {
	var rows [][]string
	for _, p := range projects {
		rows = append(rows, []string{
			p.Name,
			p.Status.Label(),
			textutil.Deref(p.Client),
			p.StartDate,
			fmt.Sprintf("%d sessions, %d takes", len(p.Sessions), p.TakeCount()),
		})
		for _, s := range p.Sessions {
			detail := ""
			if s.Duration != nil {
				detail = *s.Duration + "h"
			}
			rows = append(rows, []string{"  " + s.Date, "", "", "", detail})
			for _, t := range s.Takes {
				name := t.Name
				if t.VersionNumber != nil {
					name += " v" + *t.VersionNumber
				}
				rows = append(rows, []string{"    " + name, takeStatus(t.Status, colorize), "", "", textutil.Deref(t.FileURL)})
			}
		}
	}
	return renderTable([]string{"Name", "Status", "Client", "Start", "Detail"}, rows, nil)
}
