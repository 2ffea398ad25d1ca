// Package config provides centralized configuration and constants for sunvoy.
// Fixed endpoints, file names and scrape placeholders live here as constants;
// everything an operator may want to override is loaded from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// =============================================================================
// Service Endpoints
// =============================================================================

const (
	// DefaultBaseURL is the only host the tool talks to.
	DefaultBaseURL = "https://challenge.sunvoy.com"

	// LoginPath serves the login form on GET and accepts credentials on POST.
	LoginPath = "/login"

	// UsersPath lists the directory. The service only answers POST here.
	UsersPath = "/api/users"

	// SettingsPath renders the current user's profile form.
	SettingsPath = "/settings"
)

// =============================================================================
// Demo Credentials
// =============================================================================

const (
	DefaultUsername = "demo@example.org"
	DefaultPassword = "test"
)

// =============================================================================
// Local Files
// =============================================================================

const (
	// DefaultCredentialsFile holds the saved session cookies between runs.
	DefaultCredentialsFile = ".credentials.json"

	// DefaultOutputFile receives the merged user records.
	DefaultOutputFile = "users.json"
)

// =============================================================================
// Scrape Placeholders
// =============================================================================

// Values substituted when a field cannot be found on the settings page.
const (
	UnknownID        = "unknown"
	DefaultFirstName = "John"
	DefaultLastName  = "Doe"
	DefaultEmail     = "demo@example.org"
)

// =============================================================================
// HTTP Client Configuration
// =============================================================================

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// UserAgent mimics a standard browser.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// =============================================================================
// Parsers
// =============================================================================

const (
	ParserRegex = "regex"
	ParserDOM   = "dom"
)

// =============================================================================
// Runtime Configuration
// =============================================================================

// Config is the runtime configuration, populated from SUNVOY_* environment
// variables (and an optional .env file) with the constants above as defaults.
type Config struct {
	BaseURL         string        `env:"BASE_URL" envDefault:"https://challenge.sunvoy.com"`
	Username        string        `env:"USERNAME" envDefault:"demo@example.org"`
	Password        string        `env:"PASSWORD" envDefault:"test"`
	CredentialsFile string        `env:"CREDENTIALS_FILE" envDefault:".credentials.json"`
	OutputFile      string        `env:"OUTPUT_FILE" envDefault:"users.json"`
	Parser          string        `env:"PARSER" envDefault:"regex"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent       string        `env:"USER_AGENT"`

	Log LogConfig `envPrefix:"LOG_"`
}

// LogConfig controls the diagnostic logger. Progress lines printed by the ui
// package are not affected.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"warn"`
	Format string `env:"FORMAT" envDefault:"console"`
	File   string `env:"FILE"`
}

// EnvPrefix is prepended to every variable name in Config.
const EnvPrefix = "SUNVOY_"

// Load reads an optional .env file from the working directory and parses the
// environment into a sanitized Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Sanitize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Username:        DefaultUsername,
		Password:        DefaultPassword,
		CredentialsFile: DefaultCredentialsFile,
		OutputFile:      DefaultOutputFile,
		Parser:          ParserRegex,
		HTTPTimeout:     DefaultHTTPTimeout,
		UserAgent:       UserAgent,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Sanitize normalizes values and rejects ones the tool cannot run with.
func (c *Config) Sanitize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = DefaultCredentialsFile
	}
	if c.OutputFile == "" {
		c.OutputFile = DefaultOutputFile
	}
	if c.HTTPTimeout < 0 {
		c.HTTPTimeout = 0
	}
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	if c.UserAgent == "" {
		c.UserAgent = UserAgent
	}

	c.Parser = strings.ToLower(strings.TrimSpace(c.Parser))
	switch c.Parser {
	case "":
		c.Parser = ParserRegex
	case ParserRegex, ParserDOM:
	default:
		return fmt.Errorf("unknown parser %q (want %q or %q)", c.Parser, ParserRegex, ParserDOM)
	}

	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format != "json" {
		c.Log.Format = "console"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	return nil
}
