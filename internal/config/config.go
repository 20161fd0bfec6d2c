package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultEndpoint = "http://localhost:8000/chat/"
	DefaultTimeout  = 60 * time.Second
	DefaultLogDir   = "logs"
)

// Environment variables that override file settings
const (
	EnvEndpoint      = "LEGALCHAT_ENDPOINT"
	EnvCSRFToken     = "LEGALCHAT_CSRF_TOKEN"
	EnvCSRFTokenFile = "LEGALCHAT_CSRF_TOKEN_FILE"
	EnvCSRFHeader    = "LEGALCHAT_CSRF_HEADER"
	EnvTimeout       = "LEGALCHAT_TIMEOUT"
	EnvJournal       = "LEGALCHAT_JOURNAL"
	EnvLogDir        = "LEGALCHAT_LOG_DIR"
)

// Config holds application configuration
type Config struct {
	Endpoint string `toml:"endpoint"`

	// Anti-forgery token. CSRFTokenFile takes precedence and is re-read on
	// every request.
	CSRFToken     string `toml:"csrf_token"`
	CSRFTokenFile string `toml:"csrf_token_file"`
	CSRFHeader    string `toml:"csrf_header"`

	Timeout  Duration `toml:"timeout"` // 0 disables the request timeout
	Clock24h bool     `toml:"clock_24h"`
	Plain    bool     `toml:"plain"` // line mode instead of the TUI
	Debug    bool     `toml:"debug"`

	LogDir      string `toml:"log_dir"`
	JournalPath string `toml:"journal_path"` // empty disables the exchange journal
	Telemetry   bool   `toml:"telemetry"`
}

// Duration is a time.Duration that decodes from TOML strings like "30s"
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Endpoint:  DefaultEndpoint,
		Timeout:   Duration{DefaultTimeout},
		LogDir:    DefaultLogDir,
		Telemetry: true,
	}
}

// Load builds the configuration from defaults, an optional TOML file, an
// optional .env file and the environment, in increasing precedence.
// Command-line flags are applied by the caller afterwards.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvCSRFToken); v != "" {
		c.CSRFToken = v
	}
	if v := os.Getenv(EnvCSRFTokenFile); v != "" {
		c.CSRFTokenFile = v
	}
	if v := os.Getenv(EnvCSRFHeader); v != "" {
		c.CSRFHeader = v
	}
	if v := os.Getenv(EnvJournal); v != "" {
		c.JournalPath = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// bare numbers are seconds
			secs, serr := strconv.Atoi(v)
			if serr != nil {
				return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
			}
			d = time.Duration(secs) * time.Second
		}
		c.Timeout = Duration{d}
	}
	return nil
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute http(s) URL: %q", c.Endpoint)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout cannot be negative: %s", c.Timeout.Duration)
	}
	return nil
}
