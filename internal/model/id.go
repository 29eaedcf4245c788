package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID identifies a project or task. The backend hands out numbers, the task
// store assigns millisecond timestamps, and some records carry string keys,
// so the value is kept in its textual form.
type ID string

// IDFromInt builds an ID from a numeric key.
func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// NewTimestampID returns the client-assigned identifier for a new task.
// Two tasks created in the same millisecond collide.
func NewTimestampID(t time.Time) ID {
	return IDFromInt(t.UnixMilli())
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the textual form.
func (id ID) String() string {
	return string(id)
}

// Int returns the numeric value when the ID is a canonical integer.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// MarshalJSON writes canonical integers as JSON numbers and everything else
// as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, ok := id.Int(); ok {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}
