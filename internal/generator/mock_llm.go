package generator

import (
	"context"
	"fmt"
	"sync"
)

// MockLLM is a canned LLMClient for tests and offline runs. It records every
// prompt it receives.
type MockLLM struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []Prompt
}

func (m *MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	n := len(m.Prompts)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return fmt.Sprintf("Generated body for request %d.", n), nil
}
