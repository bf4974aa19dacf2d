package stream

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/content"
	"github.com/aiscout/backend/app/gemini"
)

// Source produces model output streams for each discovery mode.
type Source interface {
	SearchStream(ctx context.Context, apiKey, query string) iter.Seq2[*gemini.Chunk, error]
	RecommendationStream(ctx context.Context, apiKey, interests string) iter.Seq2[*gemini.Chunk, error]
	ChatStream(ctx context.Context, apiKey string, article chat.Article, message string) (string, iter.Seq2[*gemini.Chunk, error])
	MockResults() []map[string]any
}

// Validator filters a raw result batch down to items with reachable URLs.
type Validator interface {
	Run(ctx context.Context, items []map[string]any) []map[string]any
}

// LinkResolver finds candidate URLs for items the model returned without
// links, keyed by title.
type LinkResolver interface {
	Run(ctx context.Context, apiKey string, items []map[string]any) map[string][]string
}

// ResultCache is a read-through store for finished result batches.
type ResultCache interface {
	Lookup(kind, query string) ([]map[string]any, error)
	Store(kind, query string, results []map[string]any) error
}

// Orchestrator drives one streaming request end to end: it consumes the model
// stream, separates thinking from answer text, extracts the first complete
// JSON result array, runs validation or link resolution, and emits events to
// the client. Every run emits at most one results event and exactly one
// terminal event. Each request gets its own Orchestrator state; only the
// collaborators are shared.
type Orchestrator struct {
	source     Source
	validator  Validator
	resolver   LinkResolver
	cache      ResultCache
	normalizer *content.Normalizer
}

func NewOrchestrator(source Source, validator Validator, resolver LinkResolver, cache ResultCache) *Orchestrator {
	return &Orchestrator{
		source:     source,
		validator:  validator,
		resolver:   resolver,
		cache:      cache,
		normalizer: content.NewNormalizer(),
	}
}

// Search runs the search flow: model URLs are kept but must survive
// validation.
func (o *Orchestrator) Search(ctx context.Context, apiKey, query string, emit func(Event)) {
	initial := fmt.Sprintf("Searching for %q...", query)
	o.discover(ctx, "search", initial, emit, func() iter.Seq2[*gemini.Chunk, error] {
		return o.source.SearchStream(ctx, apiKey, query)
	}, query, apiKey)
}

// Recommendations runs the recommendation flow: the model is not asked for
// URLs, so links are resolved independently instead of validated.
func (o *Orchestrator) Recommendations(ctx context.Context, apiKey, interests string, emit func(Event)) {
	o.discover(ctx, "recommendations", "Analyzing current trends...", emit, func() iter.Seq2[*gemini.Chunk, error] {
		return o.source.RecommendationStream(ctx, apiKey, interests)
	}, interests, apiKey)
}

func (o *Orchestrator) discover(ctx context.Context, mode, initialThought string, emit func(Event), open func() iter.Seq2[*gemini.Chunk, error], query, apiKey string) {
	requestID := uuid.NewString()
	log := slog.With("request_id", requestID, "mode", mode)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Streaming request panicked", "panic", r)
			emit(Error(fmt.Sprintf("internal error: %v", r)))
		}
	}()

	emit(Thought(initialThought))

	if mode == "search" {
		if cached, err := o.cache.Lookup(mode, query); err != nil {
			log.Error("Cache lookup failed", "error", err)
		} else if cached != nil {
			log.Debug("Serving cached results", "count", len(cached))
			emit(ParsingComplete(len(cached)))
			emit(Results(o.normalizer.Run(cached)))
			emit(Complete())
			return
		}
	}

	var acc content.Accumulator
	resultsSent := false

	for chunk, err := range open() {
		if ctx.Err() != nil {
			log.Debug("Client disconnected, abandoning stream")
			return
		}
		if err != nil {
			// Degrade to the canned fallback instead of failing the request.
			log.Error("Model stream failed", "error", err)
			break
		}

		thinking, answer := chunk.Split()
		if thinking != "" {
			emit(Thought(thinking))
		}
		if answer == "" {
			continue
		}

		raw, ok := acc.Feed(answer)
		if !ok {
			continue
		}

		log.Debug("Result array extracted", "count", len(raw), "buffered", acc.Len())
		o.deliver(ctx, log, mode, query, apiKey, raw, emit)
		resultsSent = true
		// The rest of the model output is irrelevant once results are out.
		break
	}

	if ctx.Err() != nil {
		return
	}

	if !resultsSent {
		log.Warn("Stream ended without extractable results, serving fallback")
		emit(Results(o.normalizer.Run(o.source.MockResults())))
	}

	emit(Complete())
}

// deliver runs the post-extraction stage for one parsed batch: validation for
// search, link resolution for recommendations, then normalization and the
// single results event.
func (o *Orchestrator) deliver(ctx context.Context, log *slog.Logger, mode, query, apiKey string, raw []map[string]any, emit func(Event)) {
	emit(ParsingComplete(len(raw)))

	var kept []map[string]any
	switch mode {
	case "search":
		kept = o.validator.Run(ctx, raw)
	default:
		resolved := o.resolver.Run(ctx, apiKey, raw)
		for _, item := range raw {
			title, _ := item["title"].(string)
			if urls := resolved[title]; len(urls) > 0 {
				item["url"] = urls[0]
			}
		}
		kept = raw
	}

	if len(kept) == 0 && len(raw) > 0 {
		log.Warn("No items survived, serving fallback results")
		kept = o.source.MockResults()
	}

	if mode == "search" {
		if err := o.cache.Store(mode, query, kept); err != nil {
			log.Error("Cache store failed", "error", err)
		}
	}

	emit(Results(o.normalizer.Run(kept)))
}

// Chat runs the chat flow: no JSON extraction, answer fragments pass straight
// through as chat_chunk events and the terminal chat_complete carries the
// whole reply. Returns the session id the conversation ran under.
func (o *Orchestrator) Chat(ctx context.Context, apiKey string, article chat.Article, message string, emit func(Event)) string {
	requestID := uuid.NewString()
	log := slog.With("request_id", requestID, "mode", "chat")

	sessionID, chunks := o.source.ChatStream(ctx, apiKey, article, message)
	log = log.With("session_id", sessionID)

	terminated := false
	defer func() {
		if r := recover(); r != nil {
			log.Error("Chat request panicked", "panic", r)
			if !terminated {
				emit(Error(fmt.Sprintf("internal error: %v", r)))
			}
		}
	}()

	var full strings.Builder

	for chunk, err := range chunks {
		if ctx.Err() != nil {
			log.Debug("Client disconnected, abandoning chat stream")
			return sessionID
		}
		if err != nil {
			log.Error("Chat stream failed", "error", err)
			emit(Error(err.Error()))
			terminated = true
			return sessionID
		}

		thinking, answer := chunk.Split()
		if thinking != "" {
			emit(ChatThought(thinking))
		}
		if answer != "" {
			emit(ChatChunk(answer))
			full.WriteString(answer)
		}
	}

	if ctx.Err() != nil {
		return sessionID
	}

	emit(ChatComplete(full.String()))
	terminated = true
	return sessionID
}
