package database

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by drivers used before Connect or after Close.
var ErrNotConnected = errors.New("database connection not established")

// Driver defines the interface for database operations.
// Implementations hold at most one open connection and must be safe for
// concurrent use.
type Driver interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close releases the connection. Calling it more than once, or on a
	// driver that never connected, is a no-op.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// ListTables returns the table names in the order the engine reports them.
	ListTables(ctx context.Context) ([]string, error)

	// FetchRows runs SELECT * against table. A limit of zero or less
	// returns every row.
	FetchRows(ctx context.Context, table string, limit int) ([]Record, error)

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}
