package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full pdfforge server configuration.
type Config struct {
	// Transport selects how tools are served: "stdio" or "http".
	Transport string `yaml:"transport"`
	// Listen is the HTTP listen address (http transport only).
	Listen string `yaml:"listen"`
	// JournalDB is the SQLite path for the operation journal; empty disables it.
	JournalDB string `yaml:"journal_db"`
	// MaxSourceMB caps the size of a single source document.
	MaxSourceMB int `yaml:"max_source_mb"`
	// JournalKeep caps how many journal entries the history tool returns.
	JournalKeep int `yaml:"journal_keep"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Transport:   "stdio",
		Listen:      ":8087",
		JournalDB:   "db/opslog.db",
		MaxSourceMB: 100,
		JournalKeep: 50,
	}
}

// LoadConfig reads and parses a YAML config file, merged over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	switch c.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("unsupported transport %q (use stdio or http)", c.Transport)
	}
	if c.Transport == "http" && c.Listen == "" {
		return fmt.Errorf("listen is required for http transport")
	}
	if c.MaxSourceMB <= 0 {
		return fmt.Errorf("max_source_mb must be > 0")
	}
	return nil
}

// MaxSourceBytes returns the source size cap in bytes.
func (c *Config) MaxSourceBytes() int64 { return int64(c.MaxSourceMB) * 1024 * 1024 }
