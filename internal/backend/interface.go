// Package backend opens the record store selected by configuration.
package backend

import (
	"context"

	"financaszen/internal/storage"
)

// CleanupFunc closes the store.
type CleanupFunc func() error

// Result is an opened store and the function that closes it.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Factory opens stores from a Config.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config selects and locates the store.
type Config struct {
	Type BackendType

	// SQLiteDBPath is the database file for the sqlite backend.
	SQLiteDBPath string

	// SeedDirectory optionally holds <collection>.json files loaded into
	// the memory backend at startup.
	SeedDirectory string
}

// BackendType names a store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}
