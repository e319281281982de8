package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const glossaryText = `# heartmon glossary

- **Beat time**: milliseconds since the monitor booted, one per detected beat.
- **Period**: time since the previous beat in ms. The first beat of a session has period 0.
- **Human rate**: a period between 275 and 1500 ms (40 to 218 bpm).
- **Valid beat**: a beat whose period lies within 20% of the average of the 7 surrounding periods
  (the 7 ending at it, or failing that the 7 starting at it), all of them human. The first beat is never valid.
- **Valid range**: from just before the first valid beat to the last valid beat. Short gaps of
  invalid beats inside it are bridged by estimating how many beats were missed.
- **Total beats**: the beats counted across the valid range, including estimated missing ones.
- **Average period**: range duration divided by total beats.
- **bpm**: 60000 / period. Min bpm comes from the longest valid period, max bpm from the shortest.
- **Session merge**: a session starting within 10 minutes of the previous one's last beat (or with
  the same boot clock) is appended to it, as after a brief power loss.
`

func (h *handlers) glossary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     glossaryText,
		},
	}, nil
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rows, err := h.ds.QueryWorkouts(ctx, UserIDFromContext(ctx), 20)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(listings(rows))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
