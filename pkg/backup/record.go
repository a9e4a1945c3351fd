package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultKey is the storage key browser clients use for the pending save.
const DefaultKey = "pendingSave"

// timestampLayout renders millisecond UTC timestamps ending in "Z".
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrNotFound is returned by Load when no record is stored.
	ErrNotFound = errors.New("backup: no pending save")

	// ErrCorrupt is returned by Load and Decode when the stored bytes are not a valid record.
	ErrCorrupt = errors.New("backup: corrupt pending save")
)

// Record is a snapshot of unsaved client state.
type Record struct {
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
	Period    *string         `json:"periodo"`
}

// NewRecord stamps data with at. An empty period is stored as null.
func NewRecord(data json.RawMessage, at time.Time, period string) Record {
	r := Record{
		Data:      data,
		Timestamp: at.UTC().Format(timestampLayout),
	}
	if period != "" {
		r.Period = &period
	}
	return r
}

// Time parses the record timestamp.
func (r Record) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %v", ErrCorrupt, r.Timestamp, err)
	}
	return t, nil
}

// FreshAt reports whether the record is younger than window at now.
func (r Record) FreshAt(now time.Time, window time.Duration) (bool, error) {
	t, err := r.Time()
	if err != nil {
		return false, err
	}
	return now.Sub(t) < window, nil
}

// PeriodOr returns the period or fallback when none was recorded.
func (r Record) PeriodOr(fallback string) string {
	if r.Period == nil {
		return fallback
	}
	return *r.Period
}

// Encode serialises the record in the shared storage layout.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Decode parses stored bytes. Malformed JSON, a missing payload or an
// unparsable timestamp yield an error wrapping ErrCorrupt.
func Decode(raw []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return Record{}, fmt.Errorf("%w: missing data", ErrCorrupt)
	}
	if _, err := r.Time(); err != nil {
		return Record{}, err
	}
	return r, nil
}
