package database

import (
	"database/sql"
	"fmt"
)

// ScanRecords drains rows into records. It does not close rows.
func ScanRecords(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	records := []Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			val := values[i]
			// drivers reuse their buffers between rows
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			rec[i] = Field{Column: col, Value: val}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}
