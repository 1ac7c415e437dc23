// Package config loads wanderwise settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration shared by the server, the MCP
// command and the CLI clients.
type Config struct {
	// Address to listen on (e.g., ":9002")
	ListenAddr string `env:"WANDERWISE_LISTEN" envDefault:":9002"`

	// ServerURL is where CLI client commands reach a running server.
	ServerURL string `env:"WANDERWISE_SERVER_URL" envDefault:"http://localhost:9002"`

	// BackendURL is the itinerary generation backend.
	BackendURL string `env:"WANDERWISE_BACKEND_URL" envDefault:"http://127.0.0.1:8000"`

	// DefaultSource is sent to the backend when the traveller gave no origin.
	DefaultSource string `env:"WANDERWISE_DEFAULT_SOURCE" envDefault:"delhi"`

	// ItinerarySource selects who writes itineraries: "backend" or "model".
	ItinerarySource string `env:"WANDERWISE_ITINERARY_SOURCE" envDefault:"backend"`

	// Provider is the LLM provider: "gemini" or "ollama".
	Provider string `env:"WANDERWISE_LLM_PROVIDER" envDefault:"gemini"`

	// Model is the provider specific model name. Empty selects the
	// provider's default, see ModelName.
	Model string `env:"WANDERWISE_MODEL"`

	OllamaURL    string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// DBPath is the journal SQLite database. Empty keeps the journal in memory.
	DBPath string `env:"WANDERWISE_DB"`

	// PromptsPath overrides the embedded prompt catalog and is watched for changes.
	PromptsPath string `env:"WANDERWISE_PROMPTS"`

	LogFile string `env:"WANDERWISE_LOG_FILE"`
	Debug   bool   `env:"WANDERWISE_DEBUG" envDefault:"false"`

	// UpstreamTimeout bounds a single model or backend call.
	UpstreamTimeout time.Duration `env:"WANDERWISE_UPSTREAM_TIMEOUT" envDefault:"2m"`
}

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOllamaModel = "llama3"
)

// ModelName returns the configured model, or the default for the provider.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == "ollama" {
		return DefaultOllamaModel
	}
	return DefaultGeminiModel
}

// Load reads the given dotenv files (".env" when none are given) and then
// parses the environment. Missing dotenv files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("unknown LLM provider %q (want gemini or ollama)", c.Provider)
	}

	switch c.ItinerarySource {
	case "backend", "model":
	default:
		return fmt.Errorf("unknown itinerary source %q (want backend or model)", c.ItinerarySource)
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}

	return nil
}
