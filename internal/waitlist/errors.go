package waitlist

import "fmt"

// NoMatchError reports that no row's key column equals the target key.
// The most likely cause is a typo in the configured key, so the key and
// the number of rows searched are carried for operator diagnosis.
type NoMatchError struct {
	TargetKey string
	Rows      int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no row matches target key %q (%d rows searched)", e.TargetKey, e.Rows)
}

// AmbiguousMatchError reports more than one row matching the target key.
// Picking one silently could misreport the position, so this is fatal.
type AmbiguousMatchError struct {
	TargetKey string
	Matches   int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d rows match target key %q, expected exactly one", e.Matches, e.TargetKey)
}

// MalformedFieldError reports a designated cell that could not be parsed,
// carrying the raw cell content to diagnose upstream format changes.
type MalformedFieldError struct {
	Field   string
	RawCell string
	Cause   error
}

func (e *MalformedFieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s field: cell %q: %v", e.Field, e.RawCell, e.Cause)
	}
	return fmt.Sprintf("malformed %s field: cell %q", e.Field, e.RawCell)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Cause
}
