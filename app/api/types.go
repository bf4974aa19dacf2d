package api

import (
	"context"

	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/database"
	"github.com/aiscout/backend/app/gemini"
	"github.com/aiscout/backend/app/stream"
)

type OrchestratorInterface interface {
	Search(ctx context.Context, apiKey, query string, emit func(stream.Event))
	Recommendations(ctx context.Context, apiKey, interests string, emit func(stream.Event))
	Chat(ctx context.Context, apiKey string, article chat.Article, message string, emit func(stream.Event)) string
}

var _ OrchestratorInterface = (*stream.Orchestrator)(nil)

type CacheInterface interface {
	Clear() (int, error)
	Count() (int, error)
	Stats() (database.CacheStats, error)
}

var _ CacheInterface = (*database.CacheRepository)(nil)

type SessionStoreInterface interface {
	Messages(id string) []chat.Message
	Delete(id string)
	Clear()
	Count() int
}

var _ SessionStoreInterface = (*chat.Registry)(nil)

type Handler struct {
	client       *gemini.Client
	orchestrator OrchestratorInterface
	cache        CacheInterface
	sessions     SessionStoreInterface
}
