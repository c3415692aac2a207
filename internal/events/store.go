// Package events reads the GitHub Actions event log produced by the
// webhook receiver and aggregates workflow status from it. The log is a
// single JSON array file; this package only ever reads it.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// WorkflowRun is the workflow_run payload of an Actions event.
type WorkflowRun struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Conclusion *string `json:"conclusion"`
	UpdatedAt  string  `json:"updated_at"`
	HTMLURL    string  `json:"html_url"`
}

// Repository identifies the repository an event belongs to.
type Repository struct {
	FullName string `json:"full_name"`
}

// Event is one webhook delivery from the event log. Only the fields the
// aggregator needs are decoded; the raw record is kept so events round-trip
// through JSON without losing unknown fields.
type Event struct {
	WorkflowRun *WorkflowRun `json:"workflow_run,omitempty"`
	Repository  *Repository  `json:"repository,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and retains the raw record.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Event(p)
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the original record when the event came from the log.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	type plain Event
	return json.Marshal(plain(e))
}

// CorruptError indicates the event log exists but is not parseable.
type CorruptError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("event log %s is corrupt: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Store reads the shared event log file.
type Store struct {
	path string
}

// NewStore creates a Store over the event log at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the event log path.
func (s *Store) Path() string {
	return s.path
}

// ReadAll returns every stored event in arrival order. A missing file is a
// normal empty state, not an error: it means no events have arrived yet.
func (s *Store) ReadAll() ([]Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	var evs []Event
	if err := json.Unmarshal(data, &evs); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	return evs, nil
}

// Recent returns the trailing limit events in arrival order. A limit of
// zero or less returns the full log unmodified.
func (s *Store) Recent(limit int) ([]Event, error) {
	evs, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(evs) > limit {
		evs = evs[len(evs)-limit:]
	}
	return evs, nil
}
