package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server configuration
	Port string `long:"port" env:"PORT" default:"8001" description:"HTTP server port"`

	// Generative API configuration
	GeminiBaseURL string `long:"gemini-base-url" env:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta" description:"Base URL of the generative language API"`
	GeminiModel   string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.5-pro" description:"Model used for search, recommendations and chat"`
	GeminiAPIKey  string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Default API key (requests may carry their own)"`

	// Pipeline configuration
	PromptsFile       string `long:"prompts-file" env:"PROMPTS_FILE" default:"./prompts.yaml" description:"YAML file with prompt templates and source constraints"`
	DBPath            string `long:"db-path" env:"DB_PATH" default:"./aiscout.db" description:"SQLite database path for the result cache"`
	CacheTTL          int    `long:"cache-ttl" env:"CACHE_TTL" default:"3600" description:"Result cache TTL in seconds"`
	ValidationTimeout int    `long:"validation-timeout" env:"VALIDATION_TIMEOUT" default:"10" description:"Per-URL validation timeout in seconds"`
	ValidationWorkers int    `long:"validation-workers" env:"MAX_VALIDATION_WORKERS" default:"5" description:"Concurrent URL validation workers"`
	LinkWorkers       int    `long:"link-workers" env:"MAX_LINK_WORKERS" default:"10" description:"Concurrent link resolution workers"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"AI Scout/1.0" description:"User agent string for outbound HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		GeminiBaseURL:     raw.GeminiBaseURL,
		GeminiModel:       raw.GeminiModel,
		GeminiAPIKey:      raw.GeminiAPIKey,
		PromptsFile:       raw.PromptsFile,
		DBPath:            raw.DBPath,
		CacheTTL:          raw.CacheTTL,
		ValidationTimeout: raw.ValidationTimeout,
		ValidationWorkers: raw.ValidationWorkers,
		LinkWorkers:       raw.LinkWorkers,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
