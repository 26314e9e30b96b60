package app

import "time"

// Defaults applied before file, env and flags.
const (
	DefaultLLMBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultLLMModel    = "gemini-2.0-flash-001"
	DefaultLLMTimeout  = 60 * time.Second
	DefaultTemperature = 0.2
	DefaultMaxUpload   = 10 << 20
	DefaultListenAddr  = ":8080"
)

// Config holds runtime configuration for the application.
type Config struct {
	// One-shot run
	TemplatePath   string
	InputPath      string // "-" or empty reads stdin
	OutputPath     string
	OutputHTMLPath string
	OutputPDFPath  string
	Copy           bool

	// Server
	ListenAddr     string
	MaxUploadBytes int64
	// TrustMarkup emits model markup verbatim instead of sanitizing it.
	TrustMarkup bool

	// LLM
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	Temperature  float64
	SystemPrompt string

	// Style map file; empty uses the built-in rules
	StyleMapPath string

	// Response cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		LLMBaseURL:     DefaultLLMBaseURL,
		LLMModel:       DefaultLLMModel,
		LLMTimeout:     DefaultLLMTimeout,
		Temperature:    DefaultTemperature,
		MaxUploadBytes: DefaultMaxUpload,
		ListenAddr:     DefaultListenAddr,
	}
}
