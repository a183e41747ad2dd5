package backend

import (
	"context"

	"mycash/internal/amqp"
	"mycash/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult contains the wired store, the optional event client and cleanup.
type BackendResult struct {
	Store ledger.Store
	// Events is nil when AMQP is not configured or unreachable at startup.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns the event publisher, or nil when messaging is disabled.
func (r *BackendResult) Publisher() ledger.EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Ping checks the store when it supports it.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional for every backend
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// SeedDemoData loads the demo household into an empty store.
	SeedDemoData bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// Shared reports whether separate processes opening this backend see the
// same ledger. A memory store lives and dies with its process.
func (bt BackendType) Shared() bool {
	return bt == SQLiteBackend
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
