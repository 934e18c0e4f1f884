package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DecodeError reports fields that were missing or had an unexpected shape.
// It is informational: the value returned alongside it is fully defaulted.
type DecodeError struct {
	Source string
	Issues []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Source, strings.Join(e.Issues, "; "))
}

// Add records an issue.
func (e *DecodeError) Add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// Err returns e when it recorded any issue, nil otherwise.
func (e *DecodeError) Err() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 / RFC3339 string or a unix epoch number
// (seconds, or milliseconds when the value is too large to be seconds).
// ok is false when s holds no usable timestamp.
func ParseTimestamp(s string) (ts time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

// DecodeProbe decodes the quick weather probe body. The observation is always
// usable; a non-nil error is a *DecodeError describing what was defaulted.
func DecodeProbe(body []byte) (Observation, error) {
	derr := &DecodeError{Source: "weather probe"}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		derr.Add("body is not a JSON object: %v", err)
		return Sentinel(), derr
	}

	obs := DecodeObservation(fields, derr)
	return obs, derr.Err()
}

// DecodeObservation builds an Observation from already split JSON fields.
// Issues are recorded on derr.
func DecodeObservation(fields map[string]json.RawMessage, derr *DecodeError) Observation {
	obs := Observation{
		Type:    typeField(fields, derr),
		Active:  boolField(fields, "active", derr),
		Effects: stringsField(fields, "effects", derr),
	}
	if ts, ok := timeField(fields, "lastUpdated", derr); ok {
		obs.LastUpdated = &ts
	}
	return obs
}

// DecodeHistory decodes a weatherHistory list. Entries that are not JSON
// objects are skipped.
func DecodeHistory(raw json.RawMessage, derr *DecodeError) []HistoryEntry {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		derr.Add("weatherHistory is not a list")
		return []HistoryEntry{}
	}

	entries := make([]HistoryEntry, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			derr.Add("weatherHistory[%d] is not an object", i)
			continue
		}
		entry := HistoryEntry{
			Type:    typeField(fields, derr),
			Active:  boolField(fields, "active", derr),
			Effects: stringsField(fields, "effects", derr),
		}
		if ts, ok := timeField(fields, "startTime", derr); ok {
			entry.StartTime = &ts
		}
		if ts, ok := timeField(fields, "endTime", derr); ok {
			entry.EndTime = &ts
		}
		entries = append(entries, entry)
	}
	return entries
}

// typeField reads "type", falling back to the legacy "condition" key. An
// absent or blank type is TypeNone.
func typeField(fields map[string]json.RawMessage, derr *DecodeError) string {
	for _, key := range []string{"type", "condition"} {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			derr.Add("%s is not a string", key)
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return TypeNone
}

func boolField(fields map[string]json.RawMessage, key string, derr *DecodeError) bool {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		derr.Add("%s is not a boolean", key)
		return false
	}
	return b
}

func stringsField(fields map[string]json.RawMessage, key string, derr *DecodeError) []string {
	out := []string{}
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return out
	}
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		derr.Add("%s is not a list", key)
		return out
	}
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// timeField accepts a timestamp string or an epoch number.
func timeField(fields map[string]json.RawMessage, key string, derr *DecodeError) (time.Time, bool) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			derr.Add("%s is neither a string nor a number", key)
			return time.Time{}, false
		}
		s = n.String()
	}

	ts, ok := ParseTimestamp(s)
	if !ok {
		derr.Add("%s %q is not a timestamp", key, s)
	}
	return ts, ok
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
