package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tracksheet keeps a studio's work as Projects > Sessions > Takes.

- Project: one body of work for a client, with a production status.
- Session: one recording date within a project, with duration, engineer notes and gear.
- Take: one recorded attempt within a session, rated keep, maybe or reject, optionally with an audio file.

Start with list_projects or get_project. Read tracksheet://docs/workflow for status vocabularies and the usual flow.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tracksheet://docs/workflow",
		Name:        "workflow",
		Title:       "tracksheet workflow",
		Description: "How projects, sessions and takes fit together, and the allowed status values.",
		Content: `# tracksheet workflow

## Typical flow

1. create_project with a name and optionally a client. Status starts as in-progress.
2. create_session for each studio date (YYYY-MM-DD). Duration is in hours.
3. create_take for each attempt. Attach audio by uploading it over HTTP (POST /upload) and passing the returned fileUrl. Each upload belongs to the uploader and can be attached to one take.
4. update_take to rate takes as you listen back.
5. update_project to move the project through its stages.
6. get_recent_activity to see what changed.

## Project status

| value | meaning |
|---|---|
| in-progress | tracking |
| mixing | tracking done, mix underway |
| mastering | mix approved |
| completed | delivered |

## Take status

| value | color | meaning |
|---|---|---|
| keep | green | usable |
| maybe | yellow | revisit |
| reject | red | discard |

## Deletion

delete_take removes the take and its audio file. Deleting a project or session over HTTP removes everything under it, files included.

## Clearing fields

In update tools an omitted field is unchanged. An empty string clears an optional field; clearing a take's fileUrl deletes the stored file.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
