package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time scans a timestamp column from either backend. pgx hands over time.Time;
// sqlite may hand over time.Time, TEXT in one of its datetime layouts, or unix seconds
type Time struct{ time.Time }

var sqliteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v.UTC()
	case int64:
		t.Time = time.Unix(v, 0).UTC()
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("store.Time: unsupported type %T", src)
	}
	return nil
}

func (t *Time) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range sqliteLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(n, 0).UTC()
		return nil
	}
	return fmt.Errorf("store.Time: cannot parse %q", s)
}
