package sqlite

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds SQLite configuration.
type ClientConfig struct {
	Path         string
	WALMode      bool
	BusyTimeout  time.Duration
	CacheSizeMB  int
	MaxOpenConns int
}

// WithPath sets the database file path. ":memory:" opens a private in-memory database.
func WithPath(path string) ClientOption {
	return func(c *ClientConfig) {
		c.Path = path
	}
}

// WithWAL toggles write-ahead logging.
func WithWAL(enabled bool) ClientOption {
	return func(c *ClientConfig) {
		c.WALMode = enabled
	}
}

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.BusyTimeout = d
	}
}

// WithCacheSize sets the page cache size in megabytes.
func WithCacheSize(mb int) ClientOption {
	return func(c *ClientConfig) {
		c.CacheSizeMB = mb
	}
}
