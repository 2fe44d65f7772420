package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"slidesmith/internal/generator"
)

// Config is the process configuration, read from a JSON file with
// environment-variable fallbacks for the model credentials.
type Config struct {
	DataDir string                 `json:"data_dir,omitempty"`
	DBPath  string                 `json:"db_path,omitempty"`
	LLM     *generator.LLMSettings `json:"llm,omitempty"`
}

// LoadConfig reads the config file at path. An empty path yields defaults.
// OPENAI_API_KEY, OPENAI_BASE_URL, and SLIDESMITH_MODEL fill in any model
// settings the file leaves blank.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.DataDir == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "slidesmith")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "slidesmith.db")
	}

	if cfg.LLM == nil {
		cfg.LLM = &generator.LLMSettings{}
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = os.Getenv("SLIDESMITH_MODEL")
	}
	if cfg.LLM.Model == "" && cfg.LLM.APIKey != "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}

	return cfg, nil
}

// BuildLLM constructs the configured model client, or returns nil when no
// API key is available.
func (cfg *Config) BuildLLM() (generator.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.APIKey == "" {
		return nil, nil
	}
	return generator.NewOpenAILLM(cfg.LLM)
}

// Model returns the configured model name, or "".
func (cfg *Config) Model() string {
	if cfg.LLM == nil {
		return ""
	}
	return cfg.LLM.Model
}
