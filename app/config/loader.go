package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the prompts configuration from path. A missing file is not an
// error: compiled-in defaults are used so the server runs without any config
// on disk. Fields left empty in the file also fall back to their defaults.
func Load(path string) (*Prompts, error) {
	prompts := &Prompts{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Debug("Prompts file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	default:
		if err := yaml.Unmarshal(data, prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompts file: %w", err)
		}
		slog.Debug("Loaded prompts configuration", "path", path)
	}

	setDefaults(prompts)

	if err := validate(prompts); err != nil {
		return nil, fmt.Errorf("invalid prompts configuration: %w", err)
	}

	return prompts, nil
}

func setDefaults(p *Prompts) {
	if p.SystemInstructions == "" {
		p.SystemInstructions = fmt.Sprintf(defaultSystemInstructions, time.Now().Format("January 2, 2006"))
	}
	if p.SourceConstraints == "" {
		p.SourceConstraints = defaultSourceConstraints
	}
	if p.RecommendationBrief == "" {
		p.RecommendationBrief = defaultRecommendationBrief
	}
	if p.ChatInstructions == "" {
		p.ChatInstructions = defaultChatInstructions
	}
	if p.SearchResultCount == 0 {
		p.SearchResultCount = 4
	}
	if p.RecommendationCount == 0 {
		p.RecommendationCount = 6
	}
	if len(p.MockResults) == 0 {
		p.MockResults = defaultMockResults()
	}
}

func validate(p *Prompts) error {
	if p.SearchResultCount < 1 {
		return fmt.Errorf("search result count must be positive")
	}
	if p.RecommendationCount < 1 {
		return fmt.Errorf("recommendation count must be positive")
	}
	for i, mock := range p.MockResults {
		if mock.Title == "" {
			return fmt.Errorf("mock result at index %d has no title", i)
		}
	}
	return nil
}

// MockRaw returns the fallback result set in raw-dictionary form.
func (p *Prompts) MockRaw() []map[string]any {
	raw := make([]map[string]any, 0, len(p.MockResults))
	for _, mock := range p.MockResults {
		raw = append(raw, mock.Raw())
	}
	return raw
}
