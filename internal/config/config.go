// Package config loads smms settings.
// Source priority (highest to lowest):
// 1. Environment variables (SMMS_BASE_URL, SMMS_SESSION_FILE, SMMS_LOG_FILE)
// 2. Config file given via --config
// 3. $XDG_CONFIG_HOME/smms/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smmsclient/smms/internal/domain"
)

const (
	appDir            = "smms"
	configFile        = "config.yaml"
	sessionFile       = "session.json"
	DefaultBaseURL    = "https://sm.ms/api/v2"
	DefaultAuthScheme = "Basic"
	// AuthSchemeNone sends the bare token as the Authorization header.
	AuthSchemeNone = "none"
	DefaultTimeout    = 30 * time.Second
)

type Config struct {
	BaseURL string `yaml:"base_url"`

	// SessionFile holds the cached login token.
	SessionFile string `yaml:"session_file"`

	// LogFile is optional; logs stay in memory when empty.
	LogFile string `yaml:"log_file"`

	// AuthScheme prefixes the token in the Authorization header, or
	// "none" for the token alone.
	AuthScheme string `yaml:"auth_scheme"`

	Timeout time.Duration `yaml:"timeout"`

	// HistoryOrder: "server" (as returned) | "reversed"
	HistoryOrder domain.HistoryOrder `yaml:"history_order"`

	// Username pre-fills the login form.
	Username string `yaml:"username"`
}

// Dir returns the directory holding smms state files.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDir)
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		SessionFile:  filepath.Join(Dir(), sessionFile),
		AuthScheme:   DefaultAuthScheme,
		Timeout:      DefaultTimeout,
		HistoryOrder: domain.HistoryOrderServer,
	}
}

// Load reads configPath (or the default location when empty). A missing
// file yields defaults; a malformed one is an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = filepath.Join(Dir(), configFile)
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	applyEnvOverrides(cfg)
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.SessionFile == "" {
		c.SessionFile = def.SessionFile
	}
	if c.AuthScheme == "" {
		c.AuthScheme = def.AuthScheme
	}
	if c.HistoryOrder == "" {
		c.HistoryOrder = def.HistoryOrder
	}
}

func (c *Config) Validate() error {
	switch c.HistoryOrder {
	case domain.HistoryOrderServer, domain.HistoryOrderReversed:
	default:
		return fmt.Errorf("invalid history_order %q: want %q or %q",
			c.HistoryOrder, domain.HistoryOrderServer, domain.HistoryOrderReversed)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v: must be positive", c.Timeout)
	}
	return nil
}

func (c *Config) RawAuthorization() bool {
	return strings.EqualFold(c.AuthScheme, AuthSchemeNone)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SMMS_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SMMS_SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
	if v := os.Getenv("SMMS_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}
