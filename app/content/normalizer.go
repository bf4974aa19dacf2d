package content

import (
	"regexp"
	"strings"
)

var (
	// Matches [General search 2, Meta search 1, ...] style grounding markers.
	groupedMarkerPattern = regexp.MustCompile(`\[(?:General search \d+,?\s*|Meta search \d+,?\s*)+\]`)
	// Matches simple markers like [Search 1], [Result 2], [Source 3], [Reference 4].
	simpleMarkerPattern = regexp.MustCompile(`\[(?:Search|Result|Source|Reference)\s*\d+\]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// CleanMetadata strips residual grounding-citation markers the model leaves in
// free text and collapses the whitespace gaps they leave behind. It is
// idempotent: cleaning already-clean text is a no-op.
func CleanMetadata(text string) string {
	if text == "" {
		return text
	}

	cleaned := groupedMarkerPattern.ReplaceAllString(text, "")
	cleaned = simpleMarkerPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// Normalizer maps raw parsed dictionaries into canonical Items.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Run(raw []map[string]any) []Item {
	items := make([]Item, 0, len(raw))
	for _, dict := range raw {
		items = append(items, NewItem(dict))
	}
	return items
}
