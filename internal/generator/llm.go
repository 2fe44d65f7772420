// Package generator fills slide shapes with text produced by a language
// model, driven by a JSON outline.
package generator

import "context"

// LLMClient abstracts the chat-completion backend so tests can substitute a
// mock.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is one request to the model.
type Prompt struct {
	System string
	User   string
}

// LLMSettings configures the concrete backend.
type LLMSettings struct {
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
}
