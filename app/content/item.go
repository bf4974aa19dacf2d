package content

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// Item represents one discovered piece of content as delivered to the client.
type Item struct {
	Title       string      `json:"title"`
	Type        string      `json:"type"` // article, video, podcast, academic
	Description string      `json:"description"`
	Source      string      `json:"source"`
	Relevance   string      `json:"relevance"`
	URL         string      `json:"url,omitempty"`
	Timestamp   string      `json:"timestamp"`
	Validation  *Validation `json:"validation,omitempty"`
}

// Validation is attached to an item once its URL has passed reachability checks.
type Validation struct {
	ValidatedAt         string `json:"validated_at"`
	StatusCode          int    `json:"status_code"`
	ContentTypeVerified string `json:"content_type_verified,omitempty"`
}

// NewItem builds an Item from a raw dictionary parsed out of model output.
// Missing fields default to empty strings, never to an error. The timestamp is
// set once here and not touched afterwards.
func NewItem(raw map[string]any) Item {
	return Item{
		Title:       norm.NFC.String(getString(raw, "title")),
		Type:        getString(raw, "type"),
		Description: CleanMetadata(norm.NFC.String(getString(raw, "description"))),
		Source:      getString(raw, "source"),
		Relevance:   getString(raw, "relevance"),
		URL:         getString(raw, "url"),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Validation:  getValidation(raw),
	}
}

func getString(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func getValidation(raw map[string]any) *Validation {
	switch v := raw["validation"].(type) {
	case *Validation:
		return v
	case Validation:
		return &v
	case map[string]any:
		val := &Validation{
			ValidatedAt:         getString(v, "validated_at"),
			ContentTypeVerified: getString(v, "content_type_verified"),
		}
		if code, ok := v["status_code"].(float64); ok {
			val.StatusCode = int(code)
		}
		return val
	default:
		return nil
	}
}
