package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joacominatel/dbview/internal/database"
)

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	mu     sync.Mutex
	pool   *pgxpool.Pool
	dbName string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect establishes a single-connection pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 1
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	dbName := cfg.ConnConfig.Database
	if dbName == "" {
		_ = pool.QueryRow(ctx, queryCurrentDatabase).Scan(&dbName)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
	}
	d.pool = pool
	d.dbName = dbName
	return nil
}

// Close closes the connection pool. Safe to call repeatedly.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	pool, err := d.handle()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// ListTables returns the base tables of the current schema.
func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	pool, err := d.handle()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, queryListTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

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
	pool, err := d.handle()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, selectQuery(table, limit))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	records := []database.Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := make(database.Record, len(columns))
		for i, col := range columns {
			rec[i] = database.Field{Column: col, Value: values[i]}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dbName
}

func (d *Driver) handle() (*pgxpool.Pool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool == nil {
		return nil, database.ErrNotConnected
	}
	return d.pool, nil
}
