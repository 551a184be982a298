package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence. Empty disables the pattern archive and the tempo cache table.
	DatabaseURL string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key

	// Tempo lookup
	TempoModel    string        // model asked for song tempos
	TempoProvider string        // optional explicit provider ("openai" or "gemini")
	TempoCacheTTL time.Duration // how long a resolved tempo is trusted

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Verify HS256 bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string

	// CLI output directory for .mid files
	MIDIOutputDir string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		TempoModel:        getEnv("TEMPO_MODEL", "gpt-4.1-mini"),
		TempoProvider:     getEnv("TEMPO_PROVIDER", ""),
		TempoCacheTTL:     time.Duration(getEnvInt("TEMPO_CACHE_TTL_HOURS", 720)) * time.Hour,
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		AuthMode:          getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		JWTSecret:         getEnv("JWT_SECRET", ""),
		MIDIOutputDir:     getEnv("MIDI_OUTPUT_DIR", "."),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

// IsGatewayMode returns true if running behind an auth gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsJWTMode returns true if requests carry their own bearer token
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == "jwt"
}

// HasDatabase reports whether persistence is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasLLM reports whether any tempo lookup provider has credentials
func (c *Config) HasLLM() bool {
	return c.OpenAIAPIKey != "" || c.GeminiAPIKey != ""
}
