package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── pptx://presentations ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"pptx://presentations",
		"Open Presentations",
		mcp.WithMIMEType("application/json"),
	), s.handlePresentationsResource)

	// ── pptx://current/slide/{index} ───────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"pptx://current/slide/{index}",
			"Slide of the Current Presentation",
		),
		s.handleSlideResource,
	)
}

func (s *Server) handlePresentationsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, _ := json.MarshalIndent(s.decks.List(), "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "pptx://presentations",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleSlideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	idx, err := slideIndexFromURI(uri)
	if err != nil {
		return nil, err
	}

	pres, _, err := s.decks.Resolve("")
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= pres.SlideCount() {
		return nil, fmt.Errorf("invalid slide index %d: available slides 0-%d", idx, pres.SlideCount()-1)
	}

	data, _ := json.MarshalIndent(pres.SlideInfo(idx), "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// slideIndexFromURI parses "pptx://current/slide/{index}".
func slideIndexFromURI(uri string) (int, error) {
	const prefix = "pptx://current/slide/"
	if !strings.HasPrefix(uri, prefix) {
		return 0, fmt.Errorf("could not extract slide index from URI: %s", uri)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return 0, fmt.Errorf("could not extract slide index from URI: %s", uri)
	}
	return idx, nil
}
