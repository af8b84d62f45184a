package app

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/joacominatel/dbview/internal/database"
)

// Service owns the single database connection and coordinates access to it
// for both presentation modes.
type Service struct {
	driver database.Driver
	logger *slog.Logger

	mu     sync.Mutex
	tables []string
}

// NewService creates a new application service. A nil logger discards.
func NewService(driver database.Driver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{driver: driver, logger: logger}
}

// Connect establishes the database connection.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	start := time.Now()
	if err := s.driver.Connect(ctx, dsn); err != nil {
		s.logger.Error("connect failed", "error", err)
		return &ErrConnection{Cause: err}
	}
	s.logger.Info("connected", "database", s.driver.DatabaseName(), "duration", time.Since(start))
	return nil
}

// Disconnect releases the connection. Safe to call repeatedly.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	s.tables = nil
	s.mu.Unlock()

	if err := s.driver.Close(); err != nil {
		s.logger.Warn("close failed", "error", err)
		return err
	}
	s.logger.Debug("connection released")
	return nil
}

// ListTables fetches the table listing and remembers it for validating
// later fetches.
func (s *Service) ListTables(ctx context.Context) ([]string, error) {
	tables, err := s.driver.ListTables(ctx)
	if err != nil {
		s.logger.Error("list tables failed", "error", err)
		return nil, &ErrQuery{Cause: err}
	}

	s.mu.Lock()
	s.tables = slices.Clone(tables)
	s.mu.Unlock()

	s.logger.Debug("listed tables", "count", len(tables))
	return tables, nil
}

// FetchRows returns up to limit records of table, or all of them when
// limit <= 0. The table must appear in the table listing; names that do not
// are rejected before any SQL is built from them.
func (s *Service) FetchRows(ctx context.Context, table string, limit int) ([]database.Record, error) {
	known, err := s.isKnownTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !known {
		s.logger.Warn("rejected unknown table", "table", table)
		return nil, &ErrQuery{Table: table, Cause: ErrUnknownTable}
	}

	start := time.Now()
	records, err := s.driver.FetchRows(ctx, table, limit)
	if err != nil {
		s.logger.Error("fetch rows failed", "table", table, "error", err)
		return nil, &ErrQuery{Table: table, Cause: err}
	}

	s.logger.Debug("fetched rows",
		"table", table,
		"limit", limit,
		"rows", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	return s.driver.DatabaseName()
}

func (s *Service) isKnownTable(ctx context.Context, table string) (bool, error) {
	s.mu.Lock()
	cached := s.tables
	s.mu.Unlock()

	if slices.Contains(cached, table) {
		return true, nil
	}

	// the table may have been created since the last listing
	fresh, err := s.ListTables(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(fresh, table), nil
}
