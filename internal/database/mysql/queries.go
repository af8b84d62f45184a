package mysql

import (
	"strconv"
	"strings"
)

const queryListTables = `SHOW TABLES`

func quoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func selectQuery(table string, limit int) string {
	query := "SELECT * FROM " + quoteIdent(table)
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}
	return query
}
