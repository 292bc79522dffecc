package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"kartvid/internal/logging"
)

// Entry is one parsed JSON log line.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
	Raw     string
}

// ParseEntry decodes line. ok is false for lines that are not JSON objects.
func ParseEntry(line string) (Entry, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Entry{}, false
	}
	e := Entry{Raw: line}
	if ts, ok := fields["ts"].(string); ok {
		e.Time, _ = time.Parse(time.RFC3339, ts)
	}
	if lvl, ok := fields["level"].(string); ok {
		_ = e.Level.UnmarshalText([]byte(lvl))
	}
	e.Message, _ = fields["msg"].(string)
	delete(fields, "ts")
	delete(fields, "level")
	delete(fields, "msg")
	e.Attrs = fields
	return e, true
}

// String returns the attribute key as a string, or "" when absent.
func (e Entry) String(key string) string {
	switch v := e.Attrs[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Filter selects entries. The zero Filter keeps info and above.
type Filter struct {
	MinLevel slog.Level
	// RunID matches entries whose run id starts with this prefix.
	RunID  string
	Source string
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if e.Level < f.MinLevel {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(e.String(logging.FieldRunID), f.RunID) {
		return false
	}
	if f.Source != "" && e.String(logging.FieldSource) != f.Source {
		return false
	}
	return true
}

// Format renders e on one line as time, level, message, then attributes in
// key order.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level.String(), e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, quoteIfNeeded(e.String(k)))
	}
	return b.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
