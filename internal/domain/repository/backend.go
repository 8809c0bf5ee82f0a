package repository

import "strings"

// Backend names an ObservationStore implementation.
type Backend string

const (
	BackendClickHouse Backend = "clickhouse"
	BackendSQLite     Backend = "sqlite"
)

// IsValidBackend returns true if b is a supported backend.
func IsValidBackend(b Backend) bool {
	switch b {
	case BackendClickHouse, BackendSQLite:
		return true
	default:
		return false
	}
}

// DefaultBackend returns the default backend.
func DefaultBackend() Backend { return BackendClickHouse }

// NormalizeBackend converts raw string to a valid backend (or default).
// Matching is case-insensitive.
func NormalizeBackend(s string) Backend {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultBackend()
	}
	b := Backend(s)
	if IsValidBackend(b) {
		return b
	}
	return DefaultBackend()
}
