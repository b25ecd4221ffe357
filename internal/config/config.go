// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/johncarpenter/osdu-mcp-demo/internal/logging"
	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
)

const (
	// azureDataDir is the persistent mount on Azure App Service.
	azureDataDir = "/home"
	snapshotBase = "osdu_data"
)

// Config holds the application configuration.
type Config struct {
	Addr            string `env:"OSDU_ADDR" envDefault:"0.0.0.0:8000"`
	Backend         string `env:"OSDU_BACKEND" envDefault:"json"`
	DataDir         string `env:"OSDU_DATA_DIR"`
	DataPath        string `env:"OSDU_DATA_PATH"`
	LogLevel        string `env:"OSDU_LOG_LEVEL" envDefault:"debug"`
	LogFormat       string `env:"OSDU_LOG_FORMAT" envDefault:"text"`
	WebsiteHostname string `env:"WEBSITE_HOSTNAME"`
}

// Load creates a Config from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir(cfg.WebsiteHostname)
	}
	return cfg, nil
}

// DefaultDataDir returns /home on Azure App Service, else the working directory.
func DefaultDataDir(websiteHostname string) string {
	if websiteHostname != "" {
		return azureDataDir
	}
	return "."
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if _, err := store.ParseBackend(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StoreBackend returns the parsed backend. Call Validate first.
func (c *Config) StoreBackend() store.Backend {
	b, _ := store.ParseBackend(c.Backend)
	return b
}

// SnapshotPath returns the explicit data path, or the default file for the
// configured backend inside the data directory.
func (c *Config) SnapshotPath() string {
	if c.DataPath != "" {
		return c.DataPath
	}
	dir := c.DataDir
	if dir == "" {
		dir = DefaultDataDir(c.WebsiteHostname)
	}
	return filepath.Join(dir, snapshotBase+c.StoreBackend().Extension())
}

// EnsureDataDir creates the directory holding the snapshot if it doesn't
// exist. Remote afs locations are left alone.
func (c *Config) EnsureDataDir() error {
	path := c.SnapshotPath()
	if c.StoreBackend() == store.BackendMemory || strings.Contains(path, "://") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}
