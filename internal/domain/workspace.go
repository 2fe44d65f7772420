package domain

import "time"

// DeckRecord tracks a presentation known to the workspace: where it lives on
// disk and when it was last touched through the tool surface.
type DeckRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FilePath   string    `json:"file_path"`
	SlideCount int       `json:"slide_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GenerationRun records one outline-driven content generation pass.
type GenerationRun struct {
	ID           string    `json:"id"`
	DeckID       string    `json:"deck_id"`
	OutlineTitle string    `json:"outline_title"`
	Model        string    `json:"model"`
	SlidesTotal  int       `json:"slides_total"`
	SlidesFilled int       `json:"slides_filled"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}
