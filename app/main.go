package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aiscout/backend/app/api"
	"github.com/aiscout/backend/app/cfg"
	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/config"
	"github.com/aiscout/backend/app/database"
	"github.com/aiscout/backend/app/discovery"
	"github.com/aiscout/backend/app/gemini"
	"github.com/aiscout/backend/app/links"
	"github.com/aiscout/backend/app/stream"
	"github.com/aiscout/backend/app/validate"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting AI Scout server", "version", appCfg.Version)

	prompts, err := config.Load(appCfg.PromptsFile)
	if err != nil {
		slog.Error("Failed to load prompt configuration", "file", appCfg.PromptsFile, "error", err)
		os.Exit(1)
	}

	db, err := database.NewDB(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	if appCfg.GeminiAPIKey == "" {
		slog.Warn("No default API key configured, requests without a key will serve mock results")
	}

	client := gemini.NewClient(appCfg.GeminiBaseURL, appCfg.GeminiModel, appCfg.GeminiAPIKey)
	registry := chat.NewRegistry()
	extractor := chat.NewArticleExtractor(appCfg.UserAgent)
	service := discovery.NewService(client, prompts, registry, extractor)

	validator := validate.NewValidator(time.Duration(appCfg.ValidationTimeout)*time.Second, appCfg.ValidationWorkers)
	resolver := links.NewResolver(service, appCfg.LinkWorkers)
	cacheRepo := database.NewCacheRepository(db, time.Duration(appCfg.CacheTTL)*time.Second)

	orchestrator := stream.NewOrchestrator(service, validator, resolver, cacheRepo)

	handler := api.NewHandler(client, orchestrator, cacheRepo, registry)
	server := api.NewServer(handler, appCfg.Version)

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		// No write timeout: SSE responses stay open for the lifetime of a
		// streaming request.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "model", appCfg.GeminiModel)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
