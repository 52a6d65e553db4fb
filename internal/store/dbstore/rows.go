package dbstore

import (
	"fmt"
	"strconv"
	"time"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// timeLayouts covers CURRENT_TIMESTAMP text and the formats both
// SQLite drivers write for time values.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02",
}

// Int64 returns the integer value of col, or 0 if it is null or not numeric.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// String returns the text value of col. The bool is false for null.
func (r Row) String(col string) (string, bool) {
	switch v := r[col].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// Time returns the timestamp value of col in UTC. The bool is false for
// null or unparseable values.
func (r Row) Time(col string) (time.Time, bool) {
	switch v := r[col].(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		return ParseTime(v)
	default:
		return time.Time{}, false
	}
}

// ParseTime parses a stored SQLite timestamp. Values without a zone are UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
