package results

import (
	"encoding/json"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/joacominatel/dbview/internal/database"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func (m Model) currentRow() ([]string, bool) {
	if m.cursorY < 0 || m.cursorY >= len(m.rows) {
		return nil, false
	}
	return m.rows[m.cursorY], true
}

func (m *Model) doCopyRowText() {
	row, ok := m.currentRow()
	if !ok {
		m.statusMessage = "No row to copy"
		return
	}
	if err := writeClipboard(strings.Join(row, "\t")); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied row as text"
}

func (m *Model) doCopyRowJSON() {
	if m.cursorY < 0 || m.cursorY >= len(m.records) {
		m.statusMessage = "No row to copy"
		return
	}
	if err := writeClipboard(recordToJSON(m.records[m.cursorY])); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied row as JSON"
}

// recordToJSON preserves column order unlike map marshaling. Only SQL NULL
// becomes null; every other value is its display string.
func recordToJSON(rec database.Record) string {
	var b strings.Builder
	b.WriteString("{")
	for i, f := range rec {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(f.Column)
		b.Write(key)
		b.WriteString(": ")
		if f.Value == nil {
			b.WriteString("null")
			continue
		}
		val, _ := json.Marshal(database.FormatValue(f.Value))
		b.Write(val)
	}
	b.WriteString("}")
	return b.String()
}
