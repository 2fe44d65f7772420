package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPresentationTools() {
	// ── create_presentation ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_presentation",
		mcp.WithDescription("Create a new blank presentation from the built-in template and make it current"),
		mcp.WithString("name", mcp.Description("Presentation name (optional, defaults to Untitled)")),
	), s.handleCreatePresentation)

	// ── open_presentation ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_presentation",
		mcp.WithDescription("Open an existing .pptx file and make it the current presentation"),
		mcp.WithString("file_path", mcp.Description("Path to the .pptx file"), mcp.Required()),
	), s.handleOpenPresentation)

	// ── save_presentation ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_presentation",
		mcp.WithDescription("Save a presentation to disk"),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
		mcp.WithString("file_path", mcp.Description("Destination path (optional, reuses the last path)")),
	), s.handleSavePresentation)

	// ── switch_presentation ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("switch_presentation",
		mcp.WithDescription("Make a different open presentation current"),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID"), mcp.Required()),
	), s.handleSwitchPresentation)

	// ── list_presentations ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_presentations",
		mcp.WithDescription("List every presentation open in this session"),
	), s.handleListPresentations)

	// ── get_presentation_info ──────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_presentation_info",
		mcp.WithDescription("Get slide count, slide size, and available layouts for a presentation"),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleGetPresentationInfo)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreatePresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name := getString(args, "name", "")

	id, err := s.decks.Create(name)
	if err != nil {
		return nil, err
	}
	info, err := s.decks.Info(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(info)
}

func (s *Server) handleOpenPresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["file_path"].(string)
	if path == "" {
		return nil, fmt.Errorf("file_path is required")
	}

	id, err := s.decks.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := s.decks.Info(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(info)
}

func (s *Server) handleSavePresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["presentation_id"].(string)
	path, _ := args["file_path"].(string)

	saved, err := s.decks.Save(id, path)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Presentation saved to %s", saved)), nil
}

func (s *Server) handleSwitchPresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["presentation_id"].(string)
	if id == "" {
		return nil, fmt.Errorf("presentation_id is required")
	}

	if err := s.decks.Switch(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Current presentation is now %s", id)), nil
}

func (s *Server) handleListPresentations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.decks.List())
}

func (s *Server) handleGetPresentationInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["presentation_id"].(string)

	info, err := s.decks.Info(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(info)
}
