package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// Outline is the content-generation instruction file. Sections are kept as
// raw JSON because they are serialized verbatim into completion prompts.
type Outline struct {
	Title    string            `json:"title,omitempty"`
	Sections []json.RawMessage `json:"sections"`
}

// SlidesPerSection is the fixed run of consecutive slides that share one
// outline section during content generation.
const SlidesPerSection = 5

// SectionForSlide maps a 0-based slide index to the section that drives its
// content. Slides beyond the last full block reuse the final section.
func (o *Outline) SectionForSlide(slideIndex int) json.RawMessage {
	idx := slideIndex / SlidesPerSection
	if idx > len(o.Sections)-1 {
		idx = len(o.Sections) - 1
	}
	return o.Sections[idx]
}

// LoadOutline reads and validates an outline JSON file. An outline with no
// sections is rejected here so downstream indexing never faults.
func LoadOutline(path string) (*Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	var o Outline
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse outline: %w", err)
	}
	if len(o.Sections) == 0 {
		return nil, fmt.Errorf("outline %s has no sections", path)
	}
	return &o, nil
}
