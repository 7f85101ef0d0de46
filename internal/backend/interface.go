package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/records"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the record store and the optional collaborators built
// next to it.
type BackendResult struct {
	Store records.Store

	// Publisher is nil when no broker is configured or reachable.
	Publisher services.EventPublisher
	AMQP      *amqp.Client

	// SQLite is set for the sqlite backend only; backups and readiness
	// probes need the concrete repository.
	SQLite *storage.SQLiteRepository

	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	SeedFile     string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
