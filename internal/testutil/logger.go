// Package testutil provides helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	// sqlite driver for fixture databases.
	_ "modernc.org/sqlite"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// NewTicketsDB creates a SQLite file holding a "tickets" table with
// ticketRows rows and an empty "users" table, and returns its path.
func NewTicketsDB(t testing.TB, ticketRows int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "itsm.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `
		CREATE TABLE tickets (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			opened_on TEXT,
			assignee TEXT
		);
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	if ticketRows == 0 {
		return path
	}

	values := make([]string, ticketRows)
	for i := range values {
		assignee := "NULL"
		if i%2 == 0 {
			assignee = fmt.Sprintf("'agent%d'", i)
		}
		values[i] = fmt.Sprintf("(%d, 'Ticket %d', 'open', '2024-01-%02d', %s)", i+1, i+1, i%28+1, assignee)
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO tickets (id, title, status, opened_on, assignee) VALUES "+strings.Join(values, ", "))
	require.NoError(t, err)

	return path
}
