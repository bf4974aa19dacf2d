package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, version string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, version)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, version string) {
	api := r.Group("/api")
	{
		api.POST("/configure", handler.Configure)
		api.POST("/reset-api-key", handler.ResetAPIKey)

		api.POST("/search/stream", handler.SearchStream)
		api.POST("/recommendations/stream", handler.RecommendationsStream)
		api.POST("/chat/stream", handler.ChatStream)

		api.POST("/cache/clear", handler.ClearCache)
		api.POST("/chat/clear", handler.ClearChats)
		api.POST("/chat/clear/:chat_id", handler.ClearChat)
		api.GET("/chat/history/:chat_id", handler.ChatHistory)

		api.GET("/health", handler.Health)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "AI Scout",
			"version":     version,
			"description": "Generative-AI content discovery backend with streaming search, recommendations and chat",
			"endpoints": map[string]string{
				"configure":       "/api/configure (POST)",
				"reset_api_key":   "/api/reset-api-key (POST)",
				"search":          "/api/search/stream (POST, SSE)",
				"recommendations": "/api/recommendations/stream (POST, SSE)",
				"chat":            "/api/chat/stream (POST, SSE)",
				"cache_clear":     "/api/cache/clear (POST)",
				"chat_clear":      "/api/chat/clear (POST)",
				"chat_history":    "/api/chat/history/<chat_id>",
				"health":          "/api/health",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
