package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joacominatel/dbview/internal/database"
)

// Driver implements the database.Driver interface for MySQL and MariaDB.
type Driver struct {
	mu     sync.Mutex
	db     *sql.DB
	dbName string
}

// New creates a new MySQL driver.
func New() *Driver {
	return &Driver{}
}

// NewWithDB wraps an already opened handle. Used by tests.
func NewWithDB(db *sql.DB, name string) *Driver {
	return &Driver{db: db, dbName: name}
}

// Connect opens a single-connection handle to MySQL and pings it.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

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
	d.dbName = cfg.DBName
	return nil
}

// Close closes the connection. Safe to call repeatedly.
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

// ListTables runs SHOW TABLES.
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

	rows, err := db.QueryContext(ctx, selectQuery(table, limit))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	return database.ScanRecords(rows)
}

// DatabaseName returns the schema named in the DSN.
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
