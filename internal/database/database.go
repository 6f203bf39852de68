// Package database provides the document-store access layer for Tablefolk.
//
// The Database interface abstracts SurrealDB operations so repositories and
// services never touch the driver directly:
//   - Query: multiple results (SELECT returning lists)
//   - QueryOne: single result (SELECT by ID)
//   - Execute: no return value (CREATE/UPDATE/DELETE mutations)
//
// # Transactions
//
// Transactions here are BATCH-BASED, not connection-level. Statements added
// through an AtomicBatch or Transaction accumulate in memory and are wrapped
// in BEGIN TRANSACTION / COMMIT TRANSACTION at commit time, so the whole
// batch succeeds or fails together. There is no isolation between Add calls
// and Rollback simply discards the accumulated statements. Multi-document
// writes (paired relationship edges, message + discussion preview) go through
// AtomicBatch; see transaction.go.
//
// # Errors
//
// Sentinel errors cover the common failure cases; check them with errors.Is:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // record missing
//	}
package database

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation (e.g. duplicate email or handle).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure.
	ErrQuery = errors.New("query error")
)

// Database defines the interface for document-store operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error

	// Transaction support
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction represents a batched database transaction
type Transaction interface {
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
	Commit() error
	Rollback() error
}

// Config holds database connection settings
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
