// Package sqlite implements database.Driver on top of modernc.org/sqlite.
// The DSN is a file path or a "file:" URI.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joacominatel/dbview/internal/database"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const queryListTables = `
	SELECT name
	FROM sqlite_master
	WHERE type = 'table'
	  AND name NOT LIKE 'sqlite_%'
	ORDER BY name`

// Driver implements the database.Driver interface for SQLite files.
type Driver struct {
	mu     sync.Mutex
	db     *sql.DB
	dbName string
}

// New creates a new SQLite driver.
func New() *Driver {
	return &Driver{}
}

// Connect opens the database file.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	// a second pooled connection would see a different in-memory database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db != nil {
		_ = d.db.Close()
	}
	d.db = db
	d.dbName = nameFromDSN(dsn)
	return nil
}

func nameFromDSN(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Close closes the database. Safe to call repeatedly.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	db, err := d.handle()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// ListTables returns user tables ordered by name.
func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, queryListTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// FetchRows returns up to limit rows of table, or all rows when limit <= 0.
func (d *Driver) FetchRows(ctx context.Context, table string, limit int) ([]database.Record, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + quoteIdent(table)
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	return database.ScanRecords(rows)
}

// DatabaseName returns the base name of the database file.
func (d *Driver) DatabaseName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dbName
}

func (d *Driver) handle() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil, database.ErrNotConnected
	}
	return d.db, nil
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
