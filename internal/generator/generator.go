package generator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"slidesmith/internal/deck"
	"slidesmith/internal/domain"
)

// Generated text is rendered in a fixed body style so the deck stays uniform
// regardless of what the template carried.
const (
	generatedFontSize = 18
	generatedFontName = "Microsoft YaHei"
)

// Report summarizes one generation pass.
type Report struct {
	OutlineTitle string    `json:"outline_title"`
	SlidesTotal  int       `json:"slides_total"`
	SlidesFilled int       `json:"slides_filled"`
	ShapesFilled int       `json:"shapes_filled"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// FromOutline fills every text-bearing shape on every slide of pres with
// model output. Slides are walked in order; each block of five consecutive
// slides draws on the next outline section, and slides past the last block
// reuse the final section. Existing shape text is overwritten.
func FromOutline(ctx context.Context, pres *deck.Presentation, outline *domain.Outline, client LLMClient) (*Report, error) {
	rep := &Report{
		OutlineTitle: outline.Title,
		SlidesTotal:  pres.SlideCount(),
		StartedAt:    time.Now(),
	}

	for i, slide := range pres.Slides {
		section := outline.SectionForSlide(i)
		filled := false

		for _, sh := range slide.Shapes {
			if !sh.HasTextFrame() {
				continue
			}
			prompt := BuildPrompt(outline.Title, section, i, ShapeContext{
				Name:   sh.Name,
				Left:   deck.ToInches(sh.Left),
				Top:    deck.ToInches(sh.Top),
				Width:  deck.ToInches(sh.Width),
				Height: deck.ToInches(sh.Height),
			})
			text, err := client.Complete(ctx, prompt)
			if err != nil {
				rep.FinishedAt = time.Now()
				return rep, fmt.Errorf("slide %d shape %q: %w", i, sh.Name, err)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				log.Printf("[generate] slide %d shape %q: empty completion, skipping", i, sh.Name)
				continue
			}
			sh.SetText(text)
			sh.SetParagraphFont(generatedFontSize, generatedFontName)
			rep.ShapesFilled++
			filled = true
		}
		if filled {
			rep.SlidesFilled++
		}
	}

	rep.FinishedAt = time.Now()
	return rep, nil
}
