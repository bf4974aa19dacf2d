package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/gemini"
	"github.com/aiscout/backend/app/stream"
)

// minAPIKeyLength is a sanity bound on configured keys, not a real format
// check.
const minAPIKeyLength = 10

func NewHandler(client *gemini.Client, orchestrator OrchestratorInterface,
	cache CacheInterface, sessions SessionStoreInterface) *Handler {
	return &Handler{
		client:       client,
		orchestrator: orchestrator,
		cache:        cache,
		sessions:     sessions,
	}
}

type configureRequest struct {
	APIKey string `json:"api_key"`
}

// Configure stores a process-default API key used when requests carry none.
func (h *Handler) Configure(c *gin.Context) {
	var req configureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(req.APIKey) < minAPIKeyLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key"})
		return
	}

	h.client.SetAPIKey(req.APIKey)
	slog.Info("Default API key configured")

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetAPIKey clears the stored default key.
func (h *Handler) ResetAPIKey(c *gin.Context) {
	h.client.ResetAPIKey()
	slog.Info("Default API key cleared")

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type searchRequest struct {
	Query  string `json:"query"`
	APIKey string `json:"api_key"`
}

// SearchStream runs the SSE search flow for one query.
func (h *Handler) SearchStream(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
		return
	}

	h.streamEvents(c, func(emit func(stream.Event)) {
		h.orchestrator.Search(c.Request.Context(), req.APIKey, req.Query, emit)
	})
}

type recommendationsRequest struct {
	Interests string `json:"interests"`
	APIKey    string `json:"api_key"`
}

// RecommendationsStream runs the SSE recommendation flow.
func (h *Handler) RecommendationsStream(c *gin.Context) {
	var req recommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.streamEvents(c, func(emit func(stream.Event)) {
		h.orchestrator.Recommendations(c.Request.Context(), req.APIKey, req.Interests, emit)
	})
}

type chatRequest struct {
	Message string       `json:"message"`
	Article chat.Article `json:"article"`
	// History is advisory only; continuity comes from the server-side
	// session keyed by article identity.
	History []chat.Message `json:"history"`
	APIKey  string         `json:"api_key"`
}

// ChatStream runs the SSE chat flow for one message about one article.
func (h *Handler) ChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message"})
		return
	}
	if req.Article.Title == "" && req.Article.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article context"})
		return
	}

	h.streamEvents(c, func(emit func(stream.Event)) {
		h.orchestrator.Chat(c.Request.Context(), req.APIKey, req.Article, req.Message, emit)
	})
}

// streamEvents commits SSE headers and runs the flow synchronously, writing
// each event as a data frame. Once headers are out, failures surface as
// in-band error events, never as an HTTP status.
func (h *Handler) streamEvents(c *gin.Context, run func(emit func(stream.Event))) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)

	run(func(e stream.Event) {
		payload, err := json.Marshal(e)
		if err != nil {
			slog.Error("Failed to encode event", "type", e.Type, "error", err)
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	})
}

// ClearCache empties the result cache.
func (h *Handler) ClearCache(c *gin.Context) {
	cleared, err := h.cache.Clear()
	if err != nil {
		slog.Error("Cache clear failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache"})
		return
	}

	slog.Info("Result cache cleared", "entries", cleared)
	c.JSON(http.StatusOK, gin.H{"success": true, "cleared": cleared})
}

// ClearChats removes all chat sessions.
func (h *Handler) ClearChats(c *gin.Context) {
	h.sessions.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearChat removes a single chat session.
func (h *Handler) ClearChat(c *gin.Context) {
	chatID := c.Param("chat_id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing chat_id parameter"})
		return
	}

	h.sessions.Delete(chatID)
	c.JSON(http.StatusOK, gin.H{"success": true, "chat_id": chatID})
}

// ChatHistory returns the formatted history of one session. Unknown ids get
// an empty history, not a 404.
func (h *Handler) ChatHistory(c *gin.Context) {
	chatID := c.Param("chat_id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing chat_id parameter"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":  chatID,
		"messages": h.sessions.Messages(chatID),
	})
}

// Health reports liveness plus cache shape.
func (h *Handler) Health(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sessions":  h.sessions.Count(),
	}

	if size, err := h.cache.Count(); err == nil {
		health["cache_size"] = size
	}
	if stats, err := h.cache.Stats(); err == nil {
		health["cache_stats"] = stats
	}

	c.JSON(http.StatusOK, health)
}
