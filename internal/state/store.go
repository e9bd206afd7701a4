// Package state persists the previous waiting-list snapshot between checks.
//
// The store holds exactly one record as a small, human-inspectable JSON
// file. Absence of the file is the expected first-run state, not an error;
// a file that exists but fails the integrity check is an error, so a
// partially written or corrupted record is never misread as valid.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// recordSchema is the integrity contract for the state file. Loads that
// fail it surface as StoreError rather than a zero-valued snapshot.
const recordSchema = `{
	"type": "object",
	"required": ["position", "total", "max_prefix", "min_prefix"],
	"properties": {
		"position":       {"type": "integer", "minimum": 1},
		"total":          {"type": "integer", "minimum": 1},
		"max_prefix":     {"type": "integer", "minimum": 0},
		"min_prefix":     {"type": "integer", "minimum": 0},
		"checked_at_utc": {"type": "string"}
	}
}`

// Record is the single persisted entry: the last parsed snapshot plus the
// UTC instant it was taken.
type Record struct {
	waitlist.Snapshot
	CheckedAt time.Time `json:"checked_at_utc"`
}

// StoreError reports an I/O or integrity failure of the snapshot store.
// A missing state file is never a StoreError.
type StoreError struct {
	Path    string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("state store %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("state store %s: %s", e.Path, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Store reads and writes the single-record snapshot file.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path. The file need not
// exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// LoadPrevious returns the previously persisted record, or (nil, nil) when
// no prior record exists.
func (s *Store) LoadPrevious() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Path: s.path, Message: "failed to read state file", Cause: err}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(recordSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &StoreError{Path: s.path, Message: "state file is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		return nil, &StoreError{
			Path:    s.path,
			Message: fmt.Sprintf("state file failed integrity check: %s", result.Errors()[0]),
		}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &StoreError{Path: s.path, Message: "failed to decode state file", Cause: err}
	}
	return &rec, nil
}

// SavePresent atomically replaces the persisted record. The record is
// written to a temporary file in the same directory and renamed over the
// final path, so a crash mid-write never leaves a partial snapshot behind.
func (s *Store) SavePresent(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &StoreError{Path: s.path, Message: "failed to encode snapshot", Cause: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StoreError{Path: s.path, Message: "failed to create temporary state file", Cause: err}
	}
	defer func() {
		// No-ops once the rename has succeeded.
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return &StoreError{Path: s.path, Message: "failed to write temporary state file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Path: s.path, Message: "failed to close temporary state file", Cause: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &StoreError{Path: s.path, Message: "failed to replace state file", Cause: err}
	}
	return nil
}
