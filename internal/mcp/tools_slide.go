package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"slidesmith/internal/deck"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSlideTools() {
	// ── add_slide ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_slide",
		mcp.WithDescription("Add a slide using a layout, optionally setting its title and background in the same call"),
		mcp.WithNumber("layout_index", mcp.Description("Layout index from get_presentation_info"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Title text (optional, applied when the layout has a title placeholder)")),
		mcp.WithString("background_type", mcp.Description("Background style: solid, gradient, or professional_gradient (optional)")),
		mcp.WithString("background_colors", mcp.Description("Colors as [[r,g,b],...] JSON: first entry for solid, two stops for gradient")),
		mcp.WithString("gradient_direction", mcp.Description("Gradient direction: horizontal, vertical, or diagonal (default diagonal)")),
		mcp.WithString("color_scheme", mcp.Description("Preset name for professional_gradient: modern_blue, corporate_gray, elegant_green, warm_amber")),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleAddSlide)

	// ── get_slide_info ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_slide_info",
		mcp.WithDescription("Inventory a slide: layout, shapes with geometry and text previews, placeholders"),
		mcp.WithNumber("slide_index", mcp.Description("Slide index (0-based)"), mcp.Required()),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleGetSlideInfo)

	// ── populate_placeholder ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("populate_placeholder",
		mcp.WithDescription("Set the text of a placeholder identified by its placeholder idx"),
		mcp.WithNumber("slide_index", mcp.Description("Slide index (0-based)"), mcp.Required()),
		mcp.WithNumber("placeholder_idx", mcp.Description("Placeholder idx from get_slide_info"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Text to place"), mcp.Required()),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handlePopulatePlaceholder)

	// ── add_bullet_points ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_bullet_points",
		mcp.WithDescription("Replace a placeholder's content with a bulleted list, one paragraph per item"),
		mcp.WithNumber("slide_index", mcp.Description("Slide index (0-based)"), mcp.Required()),
		mcp.WithNumber("placeholder_idx", mcp.Description("Placeholder idx from get_slide_info"), mcp.Required()),
		mcp.WithString("bullet_points", mcp.Description(`Bullet texts as a JSON array: ["First", "Second"]`), mcp.Required()),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleAddBulletPoints)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleAddSlide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pres, _, err := s.resolveDeck(args)
	if err != nil {
		return nil, err
	}
	layoutIdx, err := requireLayoutIndex(args, pres)
	if err != nil {
		return nil, err
	}

	slide, err := pres.AddSlide(layoutIdx)
	if err != nil {
		return nil, fmt.Errorf("add slide: %w", err)
	}
	slideIdx := pres.SlideCount() - 1

	if title := getString(args, "title", ""); title != "" {
		slide.SetTitle(title)
	}
	if err := applyBackground(slide, args); err != nil {
		return nil, err
	}

	info := pres.SlideInfo(slideIdx)
	return jsonResult(map[string]any{
		"message":      fmt.Sprintf("Added slide %d using layout '%s'", slideIdx, info.LayoutName),
		"slide_index":  slideIdx,
		"layout_name":  info.LayoutName,
		"placeholders": info.Placeholders,
	})
}

// applyBackground handles the optional background arguments of add_slide. A
// gradient request with fewer than two stops is skipped rather than failing
// the call: the slide is already added at that point.
func applyBackground(slide *deck.Slide, args map[string]any) error {
	switch getString(args, "background_type", "") {
	case "":
		return nil
	case "solid":
		colors, err := parseRGBList(getString(args, "background_colors", ""))
		if err != nil {
			return err
		}
		if len(colors) == 0 {
			return fmt.Errorf("background_colors is required for a solid background")
		}
		slide.SetSolidBackground(colors[0])
	case "gradient":
		colors, err := parseRGBList(getString(args, "background_colors", ""))
		if err != nil {
			return err
		}
		if len(colors) < 2 {
			log.Printf("[MCP] gradient background needs 2 colors, got %d; leaving background unchanged", len(colors))
			return nil
		}
		direction := getString(args, "gradient_direction", "diagonal")
		if err := slide.SetGradientBackground(colors[0], colors[1], direction); err != nil {
			return err
		}
	case "professional_gradient":
		scheme := getString(args, "color_scheme", "modern_blue")
		direction := getString(args, "gradient_direction", "diagonal")
		if err := slide.SetProfessionalGradient(scheme, direction); err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(deck.SchemeNames(), ", "))
		}
	default:
		return fmt.Errorf("unknown background_type %q: use solid, gradient, or professional_gradient", args["background_type"])
	}
	return nil
}

func (s *Server) handleGetSlideInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pres, _, idx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}
	return jsonResult(pres.SlideInfo(idx))
}

func (s *Server) handlePopulatePlaceholder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	_, slide, slideIdx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}

	ph, err := placeholderForTool(slide, args)
	if err != nil {
		return nil, err
	}
	text, _ := args["text"].(string)
	ph.SetText(text)

	return textResult(fmt.Sprintf("Populated placeholder %d on slide %d", ph.Placeholder.Index, slideIdx)), nil
}

func (s *Server) handleAddBulletPoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	_, slide, slideIdx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}

	ph, err := placeholderForTool(slide, args)
	if err != nil {
		return nil, err
	}

	raw := getString(args, "bullet_points", "")
	var bullets []string
	if err := json.Unmarshal([]byte(raw), &bullets); err != nil {
		return nil, fmt.Errorf("parse bullet_points JSON: %w", err)
	}
	if len(bullets) == 0 {
		return nil, fmt.Errorf("bullet_points array is empty")
	}

	deck.AddBulletPoints(ph, bullets)
	return textResult(fmt.Sprintf("Added %d bullet points to placeholder %d on slide %d",
		len(bullets), ph.Placeholder.Index, slideIdx)), nil
}

// placeholderForTool resolves placeholder_idx against a slide, listing the
// valid indices on failure.
func placeholderForTool(slide *deck.Slide, args map[string]any) (*deck.Shape, error) {
	v, ok := args["placeholder_idx"].(float64)
	if !ok {
		return nil, fmt.Errorf("placeholder_idx is required")
	}
	idx := int(v)
	if ph, ok := slide.PlaceholderByIdx(idx); ok {
		return ph, nil
	}

	var available []string
	for _, ph := range slide.Placeholders() {
		available = append(available, fmt.Sprintf("%d (%s)", ph.Placeholder.Index, ph.Placeholder.Type))
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("placeholder %d not found: slide has no placeholders", idx)
	}
	return nil, fmt.Errorf("placeholder %d not found: available placeholders %s", idx, strings.Join(available, ", "))
}
