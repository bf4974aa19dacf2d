package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:              "8001",
		GeminiBaseURL:     "https://generativelanguage.googleapis.com/v1beta",
		GeminiModel:       "gemini-2.5-pro",
		GeminiAPIKey:      "test-key",
		PromptsFile:       "./prompts.yaml",
		DBPath:            "./aiscout.db",
		CacheTTL:          3600,
		ValidationTimeout: 10,
		ValidationWorkers: 5,
		LinkWorkers:       10,
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.Port != "8001" {
		t.Errorf("Expected port '8001', got '%s'", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("Expected model 'gemini-2.5-pro', got '%s'", cfg.GeminiModel)
	}
	if cfg.CacheTTL != 3600 {
		t.Errorf("Expected cache TTL 3600, got %d", cfg.CacheTTL)
	}
	if cfg.ValidationWorkers != 5 {
		t.Errorf("Expected 5 validation workers, got %d", cfg.ValidationWorkers)
	}
	if cfg.LinkWorkers != 10 {
		t.Errorf("Expected 10 link workers, got %d", cfg.LinkWorkers)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
