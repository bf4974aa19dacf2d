package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/config"
	"github.com/aiscout/backend/app/gemini"
)

// chatFallbackMessage is streamed when the model call behind a chat turn
// fails. The turn still completes normally from the client's perspective.
const chatFallbackMessage = "I apologize, but I encountered an error processing your question. Please try again."

const thinkingBudget = 256

// mockChunkDelay paces the canned fallback stream so clients exercise the
// same incremental rendering path as a live stream.
const mockChunkDelay = 200 * time.Millisecond

// Service drives content discovery through the Gemini API: web-grounded
// search and recommendation streams, per-article chat sessions, and citation
// lookups. When no API key is available it degrades to a canned result set
// instead of failing.
type Service struct {
	client    *gemini.Client
	prompts   *config.Prompts
	registry  *chat.Registry
	extractor *chat.ArticleExtractor
}

func NewService(client *gemini.Client, prompts *config.Prompts, registry *chat.Registry, extractor *chat.ArticleExtractor) *Service {
	return &Service{
		client:    client,
		prompts:   prompts,
		registry:  registry,
		extractor: extractor,
	}
}

// SearchStream streams a web-grounded search for query. With no usable API
// key the mock stream is returned instead.
func (s *Service) SearchStream(ctx context.Context, apiKey, query string) iter.Seq2[*gemini.Chunk, error] {
	return s.discoveryStream(ctx, apiKey, buildSearchPrompt(s.prompts, query))
}

// RecommendationStream streams content recommendations, optionally tailored
// to the given interests.
func (s *Service) RecommendationStream(ctx context.Context, apiKey, interests string) iter.Seq2[*gemini.Chunk, error] {
	return s.discoveryStream(ctx, apiKey, buildRecommendationPrompt(s.prompts, interests))
}

func (s *Service) discoveryStream(ctx context.Context, apiKey, prompt string) iter.Seq2[*gemini.Chunk, error] {
	client := s.client.WithKey(apiKey)
	if client.APIKey() == "" {
		slog.Warn("No API key available, serving mock results")
		return s.MockStream()
	}

	req := &gemini.GenerateRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: prompt}}},
		},
		SystemInstruction: &gemini.Content{
			Parts: []gemini.Part{{Text: s.prompts.SystemInstructions}},
		},
		Tools: []gemini.Tool{
			{GoogleSearch: &gemini.GoogleSearch{}},
			{URLContext: &gemini.URLContext{}},
		},
		GenerationConfig: &gemini.GenerationConfig{
			ThinkingConfig: &gemini.ThinkingConfig{
				IncludeThoughts: true,
				ThinkingBudget:  thinkingBudget,
			},
		},
	}

	return client.GenerateStream(ctx, req)
}

// MockStream replays a canned discovery stream: a few thinking chunks
// followed by one answer chunk carrying the configured mock results as JSON.
func (s *Service) MockStream() iter.Seq2[*gemini.Chunk, error] {
	thoughts := []string{
		"Analyzing the request and identifying the key topics...",
		"Searching across articles, videos, podcasts and papers...",
		"Evaluating relevance and recency of candidate results...",
		"Compiling the final list...",
	}

	payload, err := json.Marshal(s.prompts.MockRaw())
	if err != nil {
		payload = []byte("[]")
	}

	return func(yield func(*gemini.Chunk, error) bool) {
		for _, thought := range thoughts {
			chunk := &gemini.Chunk{
				Candidates: []gemini.Candidate{{
					Content: &gemini.Content{
						Role:  "model",
						Parts: []gemini.Part{{Text: thought, Thought: true}},
					},
				}},
			}
			if !yield(chunk, nil) {
				return
			}
			time.Sleep(mockChunkDelay)
		}

		yield(&gemini.Chunk{Text: string(payload)}, nil)
	}
}

// MockResults returns the canned result set in raw item form.
func (s *Service) MockResults() []map[string]any {
	return s.prompts.MockRaw()
}

// ChatStream starts or continues the chat session for article and streams the
// model's reply to message. The returned session id identifies the
// conversation for history and clearing. The user turn is recorded
// immediately; the model turn is recorded when the stream finishes. On model
// failure a canned apology chunk is streamed and recorded instead.
func (s *Service) ChatStream(ctx context.Context, apiKey string, article chat.Article, message string) (string, iter.Seq2[*gemini.Chunk, error]) {
	sessionID := chat.SessionID(article)

	session := s.registry.GetOrCreate(sessionID, func() *chat.Session {
		return s.newSession(ctx, sessionID, article)
	})
	session.Append("user", message)

	client := s.client.WithKey(apiKey)
	if client.APIKey() == "" {
		return sessionID, s.chatFallback(session)
	}

	req := &gemini.GenerateRequest{
		Contents: session.History(),
	}

	stream := func(yield func(*gemini.Chunk, error) bool) {
		var reply strings.Builder
		failed := false

		for chunk, err := range client.GenerateStream(ctx, req) {
			if err != nil {
				slog.Error("Chat stream failed", "session_id", sessionID, "error", err)
				failed = true
				break
			}
			_, answer := chunk.Split()
			reply.WriteString(answer)
			if !yield(chunk, nil) {
				session.Append("model", reply.String())
				return
			}
		}

		if failed {
			for chunk, err := range s.chatFallback(session) {
				if !yield(chunk, err) {
					return
				}
			}
			return
		}

		session.Append("model", reply.String())
	}

	return sessionID, stream
}

// chatFallback streams the apology message and records it as the model turn.
func (s *Service) chatFallback(session *chat.Session) iter.Seq2[*gemini.Chunk, error] {
	return func(yield func(*gemini.Chunk, error) bool) {
		session.Append("model", chatFallbackMessage)
		yield(&gemini.Chunk{Text: chatFallbackMessage}, nil)
	}
}

func (s *Service) newSession(ctx context.Context, sessionID string, article chat.Article) *chat.Session {
	var articleText string
	if article.URL != "" {
		text, err := s.extractor.Run(ctx, article.URL)
		if err != nil {
			slog.Debug("Article extraction skipped", "url", article.URL, "error", err)
		} else {
			articleText = text
		}
	}

	seed := buildChatSeed(s.prompts, article, articleText)
	return chat.NewSession(sessionID, article, seed)
}

// LookupCitations asks the model to find the URL of a known title and returns
// the grounding citations of its answer. No citations is not an error; the
// caller falls back to a search URL.
func (s *Service) LookupCitations(ctx context.Context, apiKey, title, source string) ([]string, error) {
	client := s.client.WithKey(apiKey)
	if client.APIKey() == "" {
		return nil, nil
	}

	req := &gemini.GenerateRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: buildCitationPrompt(title, source)}}},
		},
		Tools: []gemini.Tool{
			{GoogleSearch: &gemini.GoogleSearch{}},
		},
		GenerationConfig: &gemini.GenerationConfig{
			MaxOutputTokens: 256,
			StopSequences:   []string{"]"},
		},
	}

	resp, err := client.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("citation lookup failed: %w", err)
	}

	return resp.CitationURLs(), nil
}
