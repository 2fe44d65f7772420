package mcpserver

import (
	"encoding/json"
	"fmt"

	"slidesmith/internal/deck"
	"slidesmith/internal/domain"
)

// ── Argument validation ────────────────────────────────────
//
// Checks are collected as (ok, message) pairs and the first failure wins, so
// every handler reports the same wording for the same mistake.

type check struct {
	ok  bool
	msg string
}

func firstFailure(checks ...check) error {
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%s", c.msg)
		}
	}
	return nil
}

func positive(name string, v float64) check {
	return check{v > 0, fmt.Sprintf("%s must be positive, got %g", name, v)}
}

func nonNegative(name string, v float64) check {
	return check{v >= 0, fmt.Sprintf("%s must be non-negative, got %g", name, v)}
}

func inRange(name string, v, lo, hi float64) check {
	return check{v >= lo && v <= hi, fmt.Sprintf("%s must be between %g and %g, got %g", name, lo, hi, v)}
}

// requireSlideIndex validates the slide_index argument against the deck.
func requireSlideIndex(args map[string]any, pres *deck.Presentation) (int, error) {
	v, ok := args["slide_index"].(float64)
	if !ok {
		return 0, fmt.Errorf("slide_index is required")
	}
	idx := int(v)
	if idx < 0 || idx >= pres.SlideCount() {
		return 0, fmt.Errorf("invalid slide index %d: available slides 0-%d", idx, pres.SlideCount()-1)
	}
	return idx, nil
}

// requireShapeIndex validates the shape_index argument against a slide.
func requireShapeIndex(args map[string]any, slide *deck.Slide) (int, error) {
	v, ok := args["shape_index"].(float64)
	if !ok {
		return 0, fmt.Errorf("shape_index is required")
	}
	idx := int(v)
	if idx < 0 || idx >= len(slide.Shapes) {
		return 0, fmt.Errorf("invalid shape index %d: available shapes 0-%d", idx, len(slide.Shapes)-1)
	}
	return idx, nil
}

// requireLayoutIndex validates layout_index against the deck's layouts.
func requireLayoutIndex(args map[string]any, pres *deck.Presentation) (int, error) {
	v, ok := args["layout_index"].(float64)
	if !ok {
		return 0, fmt.Errorf("layout_index is required")
	}
	idx := int(v)
	if idx < 0 || idx >= len(pres.Layouts) {
		return 0, fmt.Errorf("invalid layout index %d: available layouts 0-%d", idx, len(pres.Layouts)-1)
	}
	return idx, nil
}

// parseRGB decodes a color argument. Colors arrive either as a JSON string
// "[255, 0, 0]" or as a decoded array of numbers.
func parseRGB(v any) (*domain.RGB, error) {
	var nums []float64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(t), &nums); err != nil {
			return nil, fmt.Errorf("parse color JSON: %w", err)
		}
	case []any:
		for _, n := range t {
			f, ok := n.(float64)
			if !ok {
				return nil, fmt.Errorf("color components must be numbers")
			}
			nums = append(nums, f)
		}
	default:
		return nil, fmt.Errorf("color must be a [r, g, b] array")
	}

	if len(nums) != 3 {
		return nil, fmt.Errorf("color must have exactly 3 components, got %d", len(nums))
	}
	c := domain.RGB{int(nums[0]), int(nums[1]), int(nums[2])}
	if !c.Valid() {
		return nil, fmt.Errorf("color components must be between 0 and 255, got %v", c)
	}
	return &c, nil
}

// parseRGBList decodes a JSON array of colors, e.g. [[255,255,255],[0,0,64]].
func parseRGBList(raw string) ([]domain.RGB, error) {
	if raw == "" {
		return nil, nil
	}
	var lists [][]float64
	if err := json.Unmarshal([]byte(raw), &lists); err != nil {
		return nil, fmt.Errorf("parse colors JSON: %w", err)
	}
	out := make([]domain.RGB, 0, len(lists))
	for _, nums := range lists {
		if len(nums) != 3 {
			return nil, fmt.Errorf("each color must have exactly 3 components, got %d", len(nums))
		}
		c := domain.RGB{int(nums[0]), int(nums[1]), int(nums[2])}
		if !c.Valid() {
			return nil, fmt.Errorf("color components must be between 0 and 255, got %v", c)
		}
		out = append(out, c)
	}
	return out, nil
}
