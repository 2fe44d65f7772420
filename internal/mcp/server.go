package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"slidesmith/internal/deck"
	"slidesmith/internal/generator"
	"slidesmith/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for the presentation workspace. It exposes tools
// and resources so AI agents can build and edit PowerPoint decks.
type Server struct {
	mcp   *server.MCPServer
	decks *service.DeckService
	llm   generator.LLMClient // nil when no model is configured
	model string
}

// Deps holds the dependencies injected into the MCP server.
type Deps struct {
	Decks *service.DeckService
	LLM   generator.LLMClient
	Model string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		decks: deps.Decks,
		llm:   deps.LLM,
		model: deps.Model,
	}

	s.mcp = server.NewMCPServer(
		"slidesmith-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerPresentationTools()
	s.registerSlideTools()
	s.registerTextTools()
	s.registerImageTools()
	s.registerGenerateTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolveDeck returns the presentation named by presentation_id, or the
// current one when the argument is absent.
func (s *Server) resolveDeck(args map[string]any) (*deck.Presentation, string, error) {
	id, _ := args["presentation_id"].(string)
	return s.decks.Resolve(id)
}

// slideForTool resolves the deck and validates the slide_index argument.
func (s *Server) slideForTool(args map[string]any) (*deck.Presentation, *deck.Slide, int, error) {
	pres, _, err := s.resolveDeck(args)
	if err != nil {
		return nil, nil, 0, err
	}
	idx, err := requireSlideIndex(args, pres)
	if err != nil {
		return nil, nil, 0, err
	}
	return pres, pres.Slides[idx], idx, nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getString(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(args map[string]any, key string) (bool, bool) {
	v, ok := args[key].(bool)
	return v, ok
}

// optFloat returns the argument as a pointer, nil when absent.
func optFloat(args map[string]any, key string) *float64 {
	if v, ok := args[key].(float64); ok {
		return &v
	}
	return nil
}

func optInt(args map[string]any, key string) *int {
	if v, ok := args[key].(float64); ok {
		n := int(v)
		return &n
	}
	return nil
}
