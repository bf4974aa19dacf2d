package cfg

type Cfg struct {
	// HTTP server configuration
	Port string

	// Generative API configuration
	GeminiBaseURL string
	GeminiModel   string
	GeminiAPIKey  string

	// Pipeline configuration
	PromptsFile       string
	DBPath            string
	CacheTTL          int
	ValidationTimeout int
	ValidationWorkers int
	LinkWorkers       int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
