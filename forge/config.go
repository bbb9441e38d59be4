package forge

import "log/slog"

// Config configures the document tool service.
type Config struct {
	// MaxSourceSize is the maximum size of a single source file
	// (default: 100 MB).
	MaxSourceSize int64 `json:"max_source_size" yaml:"max_source_size"`

	// JournalKeep caps how many journal entries the history tool returns
	// (default: 50).
	JournalKeep int `json:"journal_keep" yaml:"journal_keep"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxSourceSize <= 0 {
		c.MaxSourceSize = 100 * 1024 * 1024
	}
	if c.JournalKeep <= 0 {
		c.JournalKeep = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
