package gemini

import "strings"

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single fragment of a turn. Thought marks model-internal reasoning
// text, distinct from answer text.
type Part struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

// Tool enables a server-side tool on a generate call.
type Tool struct {
	GoogleSearch *GoogleSearch `json:"googleSearch,omitempty"`
	URLContext   *URLContext   `json:"urlContext,omitempty"`
}

type GoogleSearch struct{}

type URLContext struct{}

type ThinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts,omitempty"`
	ThinkingBudget  int  `json:"thinkingBudget,omitempty"`
}

type GenerationConfig struct {
	Temperature     float64         `json:"temperature,omitempty"`
	TopP            float64         `json:"topP,omitempty"`
	MaxOutputTokens int             `json:"maxOutputTokens,omitempty"`
	StopSequences   []string        `json:"stopSequences,omitempty"`
	ThinkingConfig  *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

// GenerateRequest is the body of generateContent and streamGenerateContent.
type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Chunk is one incremental unit of a model response. A non-streaming response
// is a single Chunk. Text is a legacy flat field kept for responses (and mocks)
// that carry no structured candidate parts.
type Chunk struct {
	Candidates []Candidate `json:"candidates,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type Candidate struct {
	Content           *Content           `json:"content,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// GroundingMetadata identifies source web pages the model consulted.
type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
}

type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

type WebSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// Split separates a chunk's thinking text from its answer text. Thought-flagged
// parts are concatenated in order into thinking, the rest into answer. A chunk
// with no extractable answer parts falls back to the flat Text field. Either
// string may be empty.
func (c *Chunk) Split() (thinking, answer string) {
	var thinkingBuf, answerBuf strings.Builder

	if len(c.Candidates) > 0 && c.Candidates[0].Content != nil {
		for _, part := range c.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			if part.Thought {
				thinkingBuf.WriteString(part.Text)
			} else {
				answerBuf.WriteString(part.Text)
			}
		}
	}

	thinking = thinkingBuf.String()
	answer = answerBuf.String()

	if answer == "" {
		answer = c.Text
	}

	return thinking, answer
}

// Grounding returns the grounding metadata of the first candidate, or nil.
func (c *Chunk) Grounding() *GroundingMetadata {
	if len(c.Candidates) == 0 {
		return nil
	}
	return c.Candidates[0].GroundingMetadata
}

// CitationURLs collects the web URIs of all grounding chunks, in order.
func (c *Chunk) CitationURLs() []string {
	metadata := c.Grounding()
	if metadata == nil {
		return nil
	}

	var urls []string
	for _, gc := range metadata.GroundingChunks {
		if gc.Web != nil && gc.Web.URI != "" {
			urls = append(urls, gc.Web.URI)
		}
	}
	return urls
}
