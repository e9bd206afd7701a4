package waitlist

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRow extracts a typed Snapshot from a matched row using the column
// designations in cols. Position and total are read either from a single
// combined "position/total" cell or from two independent cells; prefix
// lengths accept the table's rendered "/22" form as well as a bare
// integer. Pure transformation, no side effects.
func ParseRow(row TableRow, cols ColumnMap) (Snapshot, error) {
	var snap Snapshot

	if cols.Combined {
		cell, err := cellAt(row, cols.Position, "position")
		if err != nil {
			return Snapshot{}, err
		}
		pos, total, err := splitCombined(cell)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Position = pos
		snap.Total = total
	} else {
		pos, err := intCell(row, cols.Position, "position")
		if err != nil {
			return Snapshot{}, err
		}
		total, err := intCell(row, cols.Total, "total")
		if err != nil {
			return Snapshot{}, err
		}
		snap.Position = pos
		snap.Total = total
	}

	maxPrefix, err := intCell(row, cols.MaxPrefix, "max prefix")
	if err != nil {
		return Snapshot{}, err
	}
	minPrefix, err := intCell(row, cols.MinPrefix, "min prefix")
	if err != nil {
		return Snapshot{}, err
	}
	snap.MaxPrefix = maxPrefix
	snap.MinPrefix = minPrefix

	if snap.Position < 1 {
		return Snapshot{}, &MalformedFieldError{
			Field:   "position",
			RawCell: strconv.Itoa(snap.Position),
			Cause:   fmt.Errorf("position must be at least 1"),
		}
	}
	if snap.Position > snap.Total {
		return Snapshot{}, &MalformedFieldError{
			Field:   "position",
			RawCell: fmt.Sprintf("%d/%d", snap.Position, snap.Total),
			Cause:   fmt.Errorf("position exceeds total"),
		}
	}

	return snap, nil
}

// splitCombined parses a "position/total" cell such as "123/4567".
func splitCombined(cell string) (pos, total int, err error) {
	parts := strings.SplitN(cell, "/", 2)
	if len(parts) != 2 {
		return 0, 0, &MalformedFieldError{
			Field:   "position",
			RawCell: cell,
			Cause:   fmt.Errorf("expected position/total separator"),
		}
	}
	pos, err = parseCellInt(parts[0], "position", cell)
	if err != nil {
		return 0, 0, err
	}
	total, err = parseCellInt(parts[1], "total", cell)
	if err != nil {
		return 0, 0, err
	}
	return pos, total, nil
}

func intCell(row TableRow, index int, field string) (int, error) {
	cell, err := cellAt(row, index, field)
	if err != nil {
		return 0, err
	}
	return parseCellInt(cell, field, cell)
}

func cellAt(row TableRow, index int, field string) (string, error) {
	if index < 0 || index >= len(row) {
		return "", &MalformedFieldError{
			Field:   field,
			RawCell: "",
			Cause:   fmt.Errorf("column %d out of range for row of %d cells", index, len(row)),
		}
	}
	return strings.TrimSpace(row[index]), nil
}

// parseCellInt converts one cell fragment to an integer. A leading "/" is
// tolerated because the table renders prefix lengths as "/22".
func parseCellInt(s, field, raw string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "/"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &MalformedFieldError{Field: field, RawCell: raw, Cause: err}
	}
	return n, nil
}
