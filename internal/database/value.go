package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NullDisplay is the display string for SQL NULL.
const NullDisplay = "NULL"

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// FormatValue converts a scanned column value to its display string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return NullDisplay
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(dateLayout)
		}
		return val.Format(dateTimeLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return "<error: " + err.Error() + ">"
		}
		if _, nested := inner.(driver.Valuer); nested {
			return fmt.Sprint(inner)
		}
		return FormatValue(inner)
	default:
		return fmt.Sprint(val)
	}
}
