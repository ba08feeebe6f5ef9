package common

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimestampFormat matches the wire format the original clients expect:
// UTC with microsecond precision and a literal Z suffix.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in the wire format, or nil for a zero time so
// that optional timestamps serialize as JSON null.
func FormatTimestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(TimestampFormat)
	return &s
}

// FormatTimestampPtr is FormatTimestamp for nullable database columns: a
// nil input serializes as JSON null.
func FormatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return FormatTimestamp(*t)
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError sends an error response with a snake-cased error code and
// optional detail fields.
func RespondError(w http.ResponseWriter, status int, code string, details map[string]interface{}) {
	body := map[string]interface{}{"error": code}
	for k, v := range details {
		body[k] = v
	}
	RespondJSON(w, status, body)
}
