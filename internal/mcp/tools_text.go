package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"slidesmith/internal/deck"
	"slidesmith/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTextTools() {
	// ── manage_text ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("manage_text",
		mcp.WithDescription("Text operations on a slide. operation=add creates a text box; "+
			"format restyles an existing shape; validate checks whether the text fits its shape "+
			"and shrinks overflow unless validation_only is set; "+
			"format_runs rebuilds a shape from a JSON array of formatted runs."),
		mcp.WithString("operation", mcp.Description("One of: add, format, validate, format_runs"), mcp.Required()),
		mcp.WithNumber("slide_index", mcp.Description("Slide index (0-based)"), mcp.Required()),
		mcp.WithNumber("shape_index", mcp.Description("Shape index (required for format, validate, format_runs)")),
		mcp.WithNumber("left", mcp.Description("Text box left edge in inches (for add)")),
		mcp.WithNumber("top", mcp.Description("Text box top edge in inches (for add)")),
		mcp.WithNumber("width", mcp.Description("Text box width in inches (for add)")),
		mcp.WithNumber("height", mcp.Description("Text box height in inches (for add)")),
		mcp.WithString("text", mcp.Description("Text content (for add)")),
		mcp.WithNumber("font_size", mcp.Description("Font size in points (optional)")),
		mcp.WithString("font_name", mcp.Description("Font name (optional)")),
		mcp.WithBoolean("bold", mcp.Description("Bold (optional)")),
		mcp.WithBoolean("italic", mcp.Description("Italic (optional)")),
		mcp.WithBoolean("underline", mcp.Description("Underline (optional)")),
		mcp.WithString("color", mcp.Description("Font color as [r, g, b] JSON (optional)")),
		mcp.WithString("runs", mcp.Description(`Formatted runs as JSON: [{"text": "...", "bold": true, "color": [255,0,0]}, ...] (for format_runs)`)),
		mcp.WithBoolean("validation_only", mcp.Description("For validate: report the fit without shrinking the font (fixing is the default)")),
		mcp.WithNumber("min_font_size", mcp.Description("Smallest size the overflow fix may use (default 8)")),
		mcp.WithNumber("max_font_size", mcp.Description("Largest size the overflow fix may use (default 72)")),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleManageText)
}

// handleManageText dispatches on the operation tag. Each operation keeps its
// own handler so its argument contract stays readable.
func (s *Server) handleManageText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	op := getString(args, "operation", "")

	res, err := func() (*mcp.CallToolResult, error) {
		switch op {
		case "add":
			return s.textAdd(args)
		case "format":
			return s.textFormat(args)
		case "validate":
			return s.textValidate(args)
		case "format_runs":
			return s.textFormatRuns(args)
		default:
			return nil, fmt.Errorf("unknown operation %q: use add, format, validate, or format_runs", op)
		}
	}()
	if err != nil {
		return nil, fmt.Errorf("failed to %s text: %w", op, err)
	}
	return res, nil
}

func (s *Server) textAdd(args map[string]any) (*mcp.CallToolResult, error) {
	_, slide, slideIdx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}

	left := getFloat(args, "left", 1.0)
	top := getFloat(args, "top", 1.0)
	width := getFloat(args, "width", 4.0)
	height := getFloat(args, "height", 1.0)
	if err := firstFailure(
		nonNegative("left", left),
		nonNegative("top", top),
		positive("width", width),
		positive("height", height),
	); err != nil {
		return nil, err
	}

	text, _ := args["text"].(string)
	sh := slide.AddTextBox(left, top, width, height, text)

	opts, err := formatOptionsFromArgs(args)
	if err != nil {
		return nil, err
	}
	sh.Format(opts)

	return jsonResult(map[string]any{
		"message":     fmt.Sprintf("Added text box to slide %d", slideIdx),
		"slide_index": slideIdx,
		"shape_index": len(slide.Shapes) - 1,
	})
}

func (s *Server) textFormat(args map[string]any) (*mcp.CallToolResult, error) {
	_, slide, slideIdx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}
	shapeIdx, err := requireShapeIndex(args, slide)
	if err != nil {
		return nil, err
	}
	sh := slide.Shapes[shapeIdx]
	if !sh.HasTextFrame() {
		return nil, fmt.Errorf("shape %d has no text frame", shapeIdx)
	}

	opts, err := formatOptionsFromArgs(args)
	if err != nil {
		return nil, err
	}
	sh.Format(opts)

	return textResult(fmt.Sprintf("Formatted shape %d on slide %d", shapeIdx, slideIdx)), nil
}

func (s *Server) textValidate(args map[string]any) (*mcp.CallToolResult, error) {
	_, slide, _, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}
	shapeIdx, err := requireShapeIndex(args, slide)
	if err != nil {
		return nil, err
	}
	sh := slide.Shapes[shapeIdx]
	if !sh.HasTextFrame() {
		return nil, fmt.Errorf("shape %d has no text frame", shapeIdx)
	}

	fontSize := 12
	if v := optInt(args, "font_size"); v != nil {
		fontSize = *v
	}
	fit := deck.EstimateFit(sh, sh.Text(), fontSize)

	// Fixing is the default; validation_only reports without touching the deck.
	if validationOnly, _ := getBool(args, "validation_only"); validationOnly || fit.Fits {
		return jsonResult(fit)
	}

	minSize := int(getFloat(args, "min_font_size", deck.DefaultMinFontSize))
	maxSize := int(getFloat(args, "max_font_size", deck.DefaultMaxFontSize))
	if err := firstFailure(
		positive("min_font_size", float64(minSize)),
		inRange("max_font_size", float64(maxSize), float64(minSize), 400),
	); err != nil {
		return nil, err
	}
	fix := deck.AutoFixText(slide, minSize, maxSize)
	return jsonResult(map[string]any{
		"validation":      fit,
		"shapes_adjusted": fix.ShapesAdjusted,
		"adjustments":     fix.Adjustments,
	})
}

func (s *Server) textFormatRuns(args map[string]any) (*mcp.CallToolResult, error) {
	_, slide, slideIdx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}
	shapeIdx, err := requireShapeIndex(args, slide)
	if err != nil {
		return nil, err
	}
	sh := slide.Shapes[shapeIdx]
	if !sh.HasTextFrame() {
		return nil, fmt.Errorf("shape %d has no text frame", shapeIdx)
	}

	raw := getString(args, "runs", "")
	var runs []domain.TextRun
	if err := json.Unmarshal([]byte(raw), &runs); err != nil {
		return nil, fmt.Errorf("parse runs JSON: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("runs array is empty")
	}

	sh.ClearText()
	applied := 0
	for _, r := range runs {
		// Runs without text carry nothing renderable.
		if r.Text == "" {
			continue
		}
		sh.AppendRun(&deck.Run{
			Text: r.Text,
			Props: deck.RunProps{
				Bold:      r.Bold,
				Italic:    r.Italic,
				Underline: r.Underline,
				Size:      r.FontSize,
				Name:      r.FontName,
				Color:     r.Color,
				Hyperlink: r.Hyperlink,
			},
		})
		applied++
	}

	return jsonResult(map[string]any{
		"message":      fmt.Sprintf("Applied %d runs to shape %d on slide %d", applied, shapeIdx, slideIdx),
		"runs_applied": applied,
		"runs_skipped": len(runs) - applied,
	})
}

// formatOptionsFromArgs collects the optional styling arguments shared by
// the add and format operations.
func formatOptionsFromArgs(args map[string]any) (deck.FormatOptions, error) {
	var opts deck.FormatOptions
	if v := optInt(args, "font_size"); v != nil {
		if *v <= 0 {
			return opts, fmt.Errorf("font_size must be positive, got %d", *v)
		}
		opts.FontSize = v
	}
	if v := getString(args, "font_name", ""); v != "" {
		opts.FontName = &v
	}
	if v, ok := getBool(args, "bold"); ok {
		opts.Bold = &v
	}
	if v, ok := getBool(args, "italic"); ok {
		opts.Italic = &v
	}
	if v, ok := getBool(args, "underline"); ok {
		opts.Underline = &v
	}
	c, err := parseRGB(args["color"])
	if err != nil {
		return opts, err
	}
	opts.Color = c
	return opts, nil
}
