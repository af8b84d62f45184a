package database

// Field is one column of a Record.
type Field struct {
	Column string
	Value  any
}

// Record is one result row, in the column order returned by the query.
type Record []Field

// Columns returns the column names of the record in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Strings returns the display string of every value in column order.
func (r Record) Strings() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = FormatValue(f.Value)
	}
	return out
}

// Columns returns the header for a result set: the keys of its first record.
func Columns(records []Record) []string {
	if len(records) == 0 {
		return nil
	}
	return records[0].Columns()
}
