package mcpserver

import (
	"context"
	"fmt"
	"time"

	"slidesmith/internal/domain"
	"slidesmith/internal/generator"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGenerateTools() {
	// ── generate_content_from_outline ──────────────────
	s.mcp.AddTool(mcp.NewTool("generate_content_from_outline",
		mcp.WithDescription("Fill every text shape of the presentation with model-written content driven by a JSON outline. "+
			"Each block of five consecutive slides draws on the next outline section."),
		mcp.WithString("outline_path", mcp.Description("Path to the outline JSON file"), mcp.Required()),
		mcp.WithString("save_path", mcp.Description("Save the presentation here after generation (optional)")),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleGenerateFromOutline)

	// ── list_generation_runs ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_generation_runs",
		mcp.WithDescription("List recorded content-generation runs for a presentation"),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleListGenerationRuns)
}

func (s *Server) handleGenerateFromOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	if s.llm == nil {
		return nil, fmt.Errorf("no language model configured: set llm.api_key in the config or OPENAI_API_KEY")
	}

	pres, deckID, err := s.resolveDeck(args)
	if err != nil {
		return nil, err
	}
	if pres.SlideCount() == 0 {
		return nil, fmt.Errorf("presentation has no slides to fill")
	}

	outlinePath := getString(args, "outline_path", "")
	if outlinePath == "" {
		return nil, fmt.Errorf("outline_path is required")
	}
	outline, err := domain.LoadOutline(outlinePath)
	if err != nil {
		return nil, err
	}

	rep, genErr := generator.FromOutline(ctx, pres, outline, s.llm)

	run := &domain.GenerationRun{
		DeckID:       deckID,
		OutlineTitle: outline.Title,
		Model:        s.model,
		SlidesTotal:  rep.SlidesTotal,
		SlidesFilled: rep.SlidesFilled,
		StartedAt:    rep.StartedAt,
		FinishedAt:   rep.FinishedAt,
	}
	if genErr != nil {
		run.Error = genErr.Error()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	s.decks.RecordRun(run)

	if genErr != nil {
		return nil, fmt.Errorf("generate content: %w", genErr)
	}

	if savePath := getString(args, "save_path", ""); savePath != "" {
		if _, err := s.decks.Save(deckID, savePath); err != nil {
			return nil, err
		}
	}
	return jsonResult(rep)
}

func (s *Server) handleListGenerationRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["presentation_id"].(string)

	runs, err := s.decks.Runs(id)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []domain.GenerationRun{}
	}
	return jsonResult(runs)
}
