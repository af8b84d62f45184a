package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/joacominatel/dbview/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "itsm.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
		CREATE TABLE tickets (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			priority REAL,
			closed_at TEXT
		);
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
		CREATE TABLE "odd""name" (v TEXT);
		INSERT INTO tickets (id, title, priority, closed_at) VALUES
			(1, 'VPN down', 1.5, NULL),
			(2, 'Printer jam', 2, '2024-01-02'),
			(3, 'Password reset', 3, NULL);
		INSERT INTO "odd""name" (v) VALUES ('x');
	`)
	require.NoError(t, err)
	return path
}

func connect(t *testing.T, path string) *Driver {
	t.Helper()
	d := New()
	require.NoError(t, d.Connect(context.Background(), path))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDriver_ListTables(t *testing.T) {
	d := connect(t, setupTestDB(t))

	tables, err := d.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`odd"name`, "tickets", "users"}, tables)
	assert.Equal(t, "itsm", d.DatabaseName())
}

func TestDriver_FetchRows(t *testing.T) {
	d := connect(t, setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name  string
		table string
		limit int
		want  int
	}{
		{name: "limit below row count", table: "tickets", limit: 2, want: 2},
		{name: "limit above row count", table: "tickets", limit: 10, want: 3},
		{name: "no limit", table: "tickets", limit: 0, want: 3},
		{name: "empty table", table: "users", limit: 5, want: 0},
		{name: "quoted identifier", table: `odd"name`, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := d.FetchRows(ctx, tt.table, tt.limit)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestDriver_FetchRows_Values(t *testing.T) {
	d := connect(t, setupTestDB(t))

	records, err := d.FetchRows(context.Background(), "tickets", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for _, rec := range records {
		assert.Equal(t, []string{"id", "title", "priority", "closed_at"}, rec.Columns())
	}
	assert.Equal(t, []string{"1", "VPN down", "1.5", "NULL"}, records[0].Strings())
	assert.Equal(t, "2024-01-02", database.FormatValue(records[1][3].Value))
}

func TestDriver_FetchRows_MissingTable(t *testing.T) {
	d := connect(t, setupTestDB(t))

	_, err := d.FetchRows(context.Background(), "nope", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select nope")
}

func TestDriver_Close(t *testing.T) {
	d := New()
	assert.NoError(t, d.Close())

	d = connect(t, setupTestDB(t))
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err := d.ListTables(context.Background())
	assert.ErrorIs(t, err, database.ErrNotConnected)
	assert.ErrorIs(t, d.Ping(context.Background()), database.ErrNotConnected)
}

func TestNameFromDSN(t *testing.T) {
	assert.Equal(t, "itsm", nameFromDSN("/var/lib/itsm.db"))
	assert.Equal(t, "itsm", nameFromDSN("file:/var/lib/itsm.db?mode=ro"))
	assert.Equal(t, "itsm", nameFromDSN("itsm"))
}
