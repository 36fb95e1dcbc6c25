// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Slack settings
	SlackWebhookURL string

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // maximum Gemini requests per run (0 = unlimited)

	// RSS settings
	FeedsConfigPath string
	MaxArticles     int
	EnrichImages    bool

	// HTTP settings
	RequestTimeout time.Duration
	MaxRedirects   int

	// Delivery
	PostInterval time.Duration

	// History settings
	PostedURLsPath string

	// App settings
	Debug                bool
	EnableHTTPMonitoring bool
	MonitoringPort       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("MAX_GEMINI_REQUESTS", 0)
	v.SetDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml")
	v.SetDefault("POSTED_URLS_PATH", "posted_urls.json")
	v.SetDefault("MAX_ARTICLES", 5)
	v.SetDefault("POST_INTERVAL", time.Second)
	v.SetDefault("REQUEST_TIMEOUT", 15*time.Second)
	v.SetDefault("MAX_REDIRECTS", 5)
	v.SetDefault("ENRICH_IMAGES", true)
	v.SetDefault("DEBUG", false)
	v.SetDefault("ENABLE_HTTP_MONITORING", false)
	v.SetDefault("MONITORING_PORT", "8080")
}

// Load reads a .env file when one exists, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		SlackWebhookURL:      v.GetString("SLACK_WEBHOOK_URL"),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		MaxGeminiRequests:    v.GetInt("MAX_GEMINI_REQUESTS"),
		FeedsConfigPath:      v.GetString("FEEDS_CONFIG_PATH"),
		MaxArticles:          v.GetInt("MAX_ARTICLES"),
		EnrichImages:         v.GetBool("ENRICH_IMAGES"),
		RequestTimeout:       v.GetDuration("REQUEST_TIMEOUT"),
		MaxRedirects:         v.GetInt("MAX_REDIRECTS"),
		PostInterval:         v.GetDuration("POST_INTERVAL"),
		PostedURLsPath:       v.GetString("POSTED_URLS_PATH"),
		Debug:                v.GetBool("DEBUG"),
		EnableHTTPMonitoring: v.GetBool("ENABLE_HTTP_MONITORING"),
		MonitoringPort:       v.GetString("MONITORING_PORT"),
	}

	return cfg, cfg.Validate()
}

// Validate reports all missing required variables at once.
func (c *Config) Validate() error {
	var missing []string
	if c.SlackWebhookURL == "" {
		missing = append(missing, "SLACK_WEBHOOK_URL")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive, got %d", c.MaxArticles)
	}
	if c.MaxRedirects < 1 {
		return fmt.Errorf("MAX_REDIRECTS must be at least 1, got %d", c.MaxRedirects)
	}
	return nil
}
