package config

// Prompts holds the model-facing text configuration: system instructions,
// source constraints, mode-specific briefs and the fixed fallback results.
type Prompts struct {
	SystemInstructions  string       `yaml:"system_instructions"`
	SourceConstraints   string       `yaml:"source_constraints"`
	RecommendationBrief string       `yaml:"recommendation_brief"`
	ChatInstructions    string       `yaml:"chat_instructions"`
	SearchResultCount   int          `yaml:"search_result_count"`
	RecommendationCount int          `yaml:"recommendation_count"`
	MockResults         []MockResult `yaml:"mock_results"`
}

// MockResult is one entry of the fixed fallback result set.
type MockResult struct {
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
	URL         string `yaml:"url"`
	Relevance   string `yaml:"relevance"`
}

// Raw converts a mock result into the raw-dictionary shape the pipeline's
// normalizer consumes, so fallback results flow through the same path as
// parsed model output.
func (m MockResult) Raw() map[string]any {
	return map[string]any{
		"title":       m.Title,
		"type":        m.Type,
		"description": m.Description,
		"source":      m.Source,
		"url":         m.URL,
		"relevance":   m.Relevance,
	}
}
