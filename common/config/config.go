package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/event-planner-client/common/logger"
)

// Config holds the web client configuration.
// Values come from the process environment after an optional .env file is loaded.
type Config struct {
	// APIBaseURL is the event service REST root, including the /api prefix
	APIBaseURL  string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	Port          string `env:"PORT" envDefault:"3000"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`

	// NavigateDelay is how long a success notification stays on screen before a route change
	NavigateDelay   time.Duration `env:"NAVIGATE_DELAY" envDefault:"3s"`
	NotificationTTL time.Duration `env:"NOTIFICATION_TTL" envDefault:"3s"`

	SessionCookie      string `env:"SESSION_COOKIE" envDefault:"loggedInUser"`
	JWTSecret          string `env:"JWT_SECRET"`
	VerifySessionToken bool   `env:"VERIFY_SESSION_TOKEN" envDefault:"false"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads .env (current directory first, then the executable's directory) and parses the environment.
func Load() (*Config, error) {
	loadEnvFile(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.NavigateDelay < 0 || c.NotificationTTL < 0 {
		return fmt.Errorf("NAVIGATE_DELAY and NOTIFICATION_TTL must not be negative")
	}
	if c.VerifySessionToken && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when VERIFY_SESSION_TOKEN is set")
	}
	if c.SessionCookie == "" {
		return fmt.Errorf("SESSION_COOKIE must not be empty")
	}
	return nil
}

func loadEnvFile(filename string) {
	if err := godotenv.Load(filename); err == nil {
		logger.Info("Loaded environment from %s", filename)
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		return
	}
	envPath := filepath.Join(filepath.Dir(execPath), filename)
	if err := godotenv.Load(envPath); err != nil {
		logger.Debug("No .env file found, using system environment variables")
		return
	}
	logger.Info("Loaded environment from %s", envPath)
}
