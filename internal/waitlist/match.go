package waitlist

import (
	"errors"
	"strings"
)

// FindRow returns the unique row whose key column equals target after
// trimming leading and trailing whitespace on both sides. Matching is
// byte-exact otherwise: no case folding, no timezone normalization, no
// date re-parsing. The key is rendered as a formatted string and
// re-parsing it risks losing exactness (day name and zone abbreviation
// are part of the key).
func FindRow(rows []TableRow, keyColumn int, target string) (TableRow, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target key must not be empty")
	}
	if keyColumn < 0 {
		return nil, errors.New("key column index must not be negative")
	}

	var found TableRow
	matches := 0
	for _, row := range rows {
		// Non-data rows (headers, spacers) may be narrower than the
		// key column; they can never match.
		if keyColumn >= len(row) {
			continue
		}
		if strings.TrimSpace(row[keyColumn]) == target {
			found = row
			matches++
		}
	}

	switch matches {
	case 0:
		return nil, &NoMatchError{TargetKey: target, Rows: len(rows)}
	case 1:
		return found, nil
	default:
		return nil, &AmbiguousMatchError{TargetKey: target, Matches: matches}
	}
}
