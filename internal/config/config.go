// Package config reads service configuration from environment variables.
// Each New*Config constructor applies defaults and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/relocation-matcher/internal/llm"
)

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	Port            int
	DatabaseURL     string
	RedisURL        string // empty disables caching
	CatalogCacheTTL time.Duration
	VibeCacheTTL    time.Duration
	Env             string
	LogLevel        string
	RegionsFile     string // empty uses the embedded region table
}

// NewServerConfig reads PORT (8080), DATABASE_URL (required), REDIS_URL,
// CATALOG_CACHE_TTL (5m), VIBE_CACHE_TTL (24h), APP_ENV (local), LOG_LEVEL
// and REGIONS_FILE.
func NewServerConfig() (*ServerConfig, error) {
	port, err := envInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	catalogTTL, err := envDuration("CATALOG_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	vibeTTL, err := envDuration("VIBE_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config := &ServerConfig{
		Port:            port,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CatalogCacheTTL: catalogTTL,
		VibeCacheTTL:    vibeTTL,
		Env:             envString("APP_ENV", "local"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		RegionsFile:     os.Getenv("REGIONS_FILE"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ServerConfig) normalize() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.CatalogCacheTTL <= 0 || c.VibeCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}

// LLMSettings selects the LLM provider and its credentials.
type LLMSettings struct {
	Provider string // gemini or openai
	APIKey   string
	BaseURL  string
	Model    string // overrides the provider's lite-tier model when set
}

// NewLLMSettings reads LLM_PROVIDER (gemini), GEMINI_API_KEY, OPENAI_API_KEY,
// OPENAI_BASE_URL and OPENAI_MODEL. A missing API key is not an error: the
// vibe endpoint is simply disabled.
func NewLLMSettings() (*LLMSettings, error) {
	s := &LLMSettings{Provider: strings.ToLower(envString("LLM_PROVIDER", "gemini"))}

	switch s.Provider {
	case "gemini":
		s.APIKey = os.Getenv("GEMINI_API_KEY")
	case "openai":
		s.APIKey = os.Getenv("OPENAI_API_KEY")
		s.BaseURL = os.Getenv("OPENAI_BASE_URL")
		s.Model = os.Getenv("OPENAI_MODEL")
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (want gemini or openai)", s.Provider)
	}
	return s, nil
}

// Enabled reports whether an API key is configured.
func (s *LLMSettings) Enabled() bool {
	return s.APIKey != ""
}

// LLMConfig returns the provider's model configuration with any overrides applied.
func (s *LLMSettings) LLMConfig() (*llm.Config, error) {
	cfg, err := llm.ConfigFor(s.Provider)
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = s.BaseURL
	if s.Model != "" {
		cfg = cfg.WithModel(llm.TierLite, s.Model)
	}
	return cfg, nil
}

// AdminConfig lists the accounts allowed to manage the catalog.
type AdminConfig struct {
	Emails []string
}

// NewAdminConfig reads ADMIN_EMAILS, a comma-separated list.
func NewAdminConfig() *AdminConfig {
	var emails []string
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	return &AdminConfig{Emails: emails}
}

func envString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
