package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"slidesmith/internal/deck"
	"slidesmith/internal/picture"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerImageTools() {
	// ── manage_image ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("manage_image",
		mcp.WithDescription("Image operations. operation=add places an image on a slide from a file or base64 data; "+
			"enhance re-encodes an image file with brightness/contrast/saturation adjustments."),
		mcp.WithString("operation", mcp.Description("One of: add, enhance"), mcp.Required()),
		mcp.WithNumber("slide_index", mcp.Description("Slide index (0-based, for add)")),
		mcp.WithString("source_type", mcp.Description("Source kind: file or base64 (default file)")),
		mcp.WithString("image_source", mcp.Description("File path, or base64 image data (with or without a data: URI prefix)"), mcp.Required()),
		mcp.WithNumber("left", mcp.Description("Left edge in inches (default 1)")),
		mcp.WithNumber("top", mcp.Description("Top edge in inches (default 1)")),
		mcp.WithNumber("width", mcp.Description("Width in inches (optional, natural size when omitted)")),
		mcp.WithNumber("height", mcp.Description("Height in inches (optional, preserves aspect ratio when only one is set)")),
		mcp.WithString("style", mcp.Description("For enhance: named preset, currently 'presentation'")),
		mcp.WithNumber("brightness", mcp.Description("Brightness factor, 1.0 = unchanged (for enhance)")),
		mcp.WithNumber("contrast", mcp.Description("Contrast factor (for enhance)")),
		mcp.WithNumber("saturation", mcp.Description("Saturation factor (for enhance)")),
		mcp.WithNumber("sharpness", mcp.Description("Sharpness factor (for enhance)")),
		mcp.WithNumber("blur_radius", mcp.Description("Gaussian blur radius in pixels (for enhance)")),
		mcp.WithString("filter", mcp.Description("Named filter: grayscale or invert (for enhance)")),
		mcp.WithString("output_path", mcp.Description("Where to write the enhanced image (optional)")),
		mcp.WithString("presentation_id", mcp.Description("Presentation ID (optional, defaults to current)")),
	), s.handleManageImage)
}

func (s *Server) handleManageImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	op := getString(args, "operation", "")

	res, err := func() (*mcp.CallToolResult, error) {
		switch op {
		case "add":
			return s.imageAdd(args)
		case "enhance":
			return s.imageEnhance(args)
		default:
			return nil, fmt.Errorf("unknown operation %q: use add or enhance", op)
		}
	}()
	if err != nil {
		return nil, fmt.Errorf("failed to %s image: %w", op, err)
	}
	return res, nil
}

func (s *Server) imageAdd(args map[string]any) (*mcp.CallToolResult, error) {
	_, slide, slideIdx, err := s.slideForTool(args)
	if err != nil {
		return nil, err
	}

	data, err := imageBytes(args)
	if err != nil {
		return nil, err
	}
	pxW, pxH, contentType, err := picture.Probe(data)
	if err != nil {
		return nil, err
	}

	left := getFloat(args, "left", 1.0)
	top := getFloat(args, "top", 1.0)
	if err := firstFailure(
		nonNegative("left", left),
		nonNegative("top", top),
	); err != nil {
		return nil, err
	}
	width := optFloat(args, "width")
	height := optFloat(args, "height")
	if width != nil {
		if err := firstFailure(positive("width", *width)); err != nil {
			return nil, err
		}
	}
	if height != nil {
		if err := firstFailure(positive("height", *height)); err != nil {
			return nil, err
		}
	}

	sh := slide.AddImage(data, contentType, pxW, pxH, left, top, width, height)

	return jsonResult(map[string]any{
		"message":     fmt.Sprintf("Added %dx%d image to slide %d", pxW, pxH, slideIdx),
		"slide_index": slideIdx,
		"shape_index": len(slide.Shapes) - 1,
		"width":       deck.ToInches(sh.Width),
		"height":      deck.ToInches(sh.Height),
	})
}

// imageBytes loads the image payload from the requested source. Base64 data
// is decoded in memory so nothing ever lands in a temp file.
func imageBytes(args map[string]any) ([]byte, error) {
	source := getString(args, "image_source", "")
	if source == "" {
		return nil, fmt.Errorf("image_source is required")
	}
	switch kind := getString(args, "source_type", "file"); kind {
	case "file":
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		return data, nil
	case "base64":
		// Tolerate data URIs: "data:image/png;base64,...."
		if i := strings.Index(source, "base64,"); i >= 0 {
			source = source[i+len("base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(source)
		if err != nil {
			return nil, fmt.Errorf("decode base64 content: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown source_type %q: use file or base64", kind)
	}
}

func (s *Server) imageEnhance(args map[string]any) (*mcp.CallToolResult, error) {
	if getString(args, "source_type", "file") == "base64" {
		return nil, fmt.Errorf("enhancement requires a file source; decode the base64 data to a file first")
	}
	path := getString(args, "image_source", "")
	if path == "" {
		return nil, fmt.Errorf("image_source is required")
	}

	var opts picture.Options
	if getString(args, "style", "") == "presentation" {
		opts = picture.PresentationPreset()
	} else {
		opts = picture.Options{
			Brightness: getFloat(args, "brightness", 1.0),
			Contrast:   getFloat(args, "contrast", 1.0),
			Saturation: getFloat(args, "saturation", 1.0),
			Sharpness:  getFloat(args, "sharpness", 1.0),
			BlurRadius: getFloat(args, "blur_radius", 0),
			Filter:     getString(args, "filter", ""),
		}
		if err := firstFailure(
			positive("brightness", opts.Brightness),
			positive("contrast", opts.Contrast),
			positive("saturation", opts.Saturation),
			positive("sharpness", opts.Sharpness),
			nonNegative("blur_radius", opts.BlurRadius),
		); err != nil {
			return nil, err
		}
	}

	out, err := picture.Enhance(path, opts, getString(args, "output_path", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"message":     "Image enhanced",
		"output_path": out,
	})
}
