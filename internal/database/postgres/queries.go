package postgres

import (
	"strconv"

	"github.com/jackc/pgx/v5"
)

// SQL queries for PostgreSQL metadata introspection.
const (
	queryListTables = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	queryCurrentDatabase = `SELECT current_database()`
)

// selectQuery builds SELECT * for table. The name is sanitized by pgx, so a
// "schema.table" string is treated as a single identifier.
func selectQuery(table string, limit int) string {
	query := "SELECT * FROM " + pgx.Identifier{table}.Sanitize()
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}
	return query
}
