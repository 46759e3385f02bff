package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracksheet/internal/domain/activity"
	"github.com/rpggio/tracksheet/internal/domain/project"
	"github.com/rpggio/tracksheet/internal/domain/session"
	"github.com/rpggio/tracksheet/internal/domain/take"
)

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all projects with their sessions and takes, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, ProjectList, error) {
		projects, err := svc.Projects.List(ctx, ownerFrom(ctx))
		if err != nil {
			return nil, ProjectList{}, toolError(logger, "list_projects", err)
		}
		out := ProjectList{Projects: make([]ProjectView, 0, len(projects))}
		for _, p := range projects {
			out.Projects = append(out.Projects, projectView(p))
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one project with its sessions and takes",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectParams) (*sdkmcp.CallToolResult, ProjectView, error) {
		p, err := svc.Projects.Get(ctx, ownerFrom(ctx), in.ID)
		if err != nil {
			return nil, ProjectView{}, toolError(logger, "get_project", err)
		}
		return nil, projectView(*p), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project for a client",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, ProjectView, error) {
		p, err := svc.Projects.Create(ctx, ownerFrom(ctx), project.CreateRequest{
			Name:      in.Name,
			Client:    in.Client,
			Status:    in.Status,
			Notes:     in.Notes,
			StartDate: in.StartDate,
		})
		if err != nil {
			return nil, ProjectView{}, toolError(logger, "create_project", err)
		}
		return nil, projectView(*p), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Change a project's fields; omitted fields are left unchanged",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectParams) (*sdkmcp.CallToolResult, ProjectView, error) {
		p, err := svc.Projects.Update(ctx, ownerFrom(ctx), in.ID, project.UpdateRequest{
			Name:      in.Name,
			Client:    in.Client,
			Status:    in.Status,
			Notes:     in.Notes,
			StartDate: in.StartDate,
		})
		if err != nil {
			return nil, ProjectView{}, toolError(logger, "update_project", err)
		}
		return nil, projectView(*p), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_session",
		Description: "Log a recording session under a project",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateSessionParams) (*sdkmcp.CallToolResult, SessionView, error) {
		s, err := svc.Sessions.Create(ctx, ownerFrom(ctx), session.CreateRequest{
			ProjectID:     in.ProjectID,
			Date:          in.Date,
			Duration:      in.Duration,
			EngineerNotes: in.EngineerNotes,
			GearUsed:      in.GearUsed,
		})
		if err != nil {
			return nil, SessionView{}, toolError(logger, "create_session", err)
		}
		return nil, sessionView(*s), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_take",
		Description: "Record a take in a session",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateTakeParams) (*sdkmcp.CallToolResult, TakeView, error) {
		t, err := svc.Takes.Create(ctx, ownerFrom(ctx), take.CreateRequest{
			SessionID:     in.SessionID,
			Name:          in.Name,
			VersionNumber: in.VersionNumber,
			Notes:         in.Notes,
			Status:        in.Status,
			FileURL:       in.FileURL,
		})
		if err != nil {
			return nil, TakeView{}, toolError(logger, "create_take", err)
		}
		return nil, takeView(*t), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_take",
		Description: "Change a take's fields, e.g. mark it keep, maybe or reject",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateTakeParams) (*sdkmcp.CallToolResult, TakeView, error) {
		t, err := svc.Takes.Update(ctx, ownerFrom(ctx), in.ID, take.UpdateRequest{
			Name:          in.Name,
			VersionNumber: in.VersionNumber,
			Notes:         in.Notes,
			Status:        in.Status,
			FileURL:       in.FileURL,
		})
		if err != nil {
			return nil, TakeView{}, toolError(logger, "update_take", err)
		}
		return nil, takeView(*t), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_take",
		Description: "Delete a take and its audio file",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteTakeParams) (*sdkmcp.CallToolResult, DeleteResult, error) {
		if err := svc.Takes.Delete(ctx, ownerFrom(ctx), in.ID); err != nil {
			return nil, DeleteResult{}, toolError(logger, "delete_take", err)
		}
		return nil, DeleteResult{Success: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent changes, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecentActivityParams) (*sdkmcp.CallToolResult, ActivityList, error) {
		opts := activity.ListOptions{ProjectID: in.ProjectID, Limit: in.Limit, Offset: in.Offset}
		if in.Type != "" {
			typ := activity.Type(in.Type)
			opts.Type = &typ
		}
		entries, err := svc.Activity.Recent(ctx, ownerFrom(ctx), opts)
		if err != nil {
			return nil, ActivityList{}, toolError(logger, "get_recent_activity", err)
		}
		out := ActivityList{Entries: make([]ActivityView, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, activityView(e))
		}
		return nil, out, nil
	})
}
