// Package waitlist locates and parses a single entry in a rendered waiting-list table.
package waitlist

// TableRow is one rendered table row as an ordered sequence of cell texts.
// Rows are produced fresh each cycle by the page renderer and never persisted.
type TableRow []string

// Snapshot is the parsed waiting-list entry for one check.
// Invariant: 1 <= Position <= Total.
type Snapshot struct {
	Position  int `json:"position"`
	Total     int `json:"total"`
	MaxPrefix int `json:"max_prefix"`
	MinPrefix int `json:"min_prefix"`
}

// ColumnMap designates which cells of a matched row hold each field.
// When Combined is set, the cell at Position is rendered as
// "position/total" and Total is ignored; otherwise position and total
// live in two independent cells.
type ColumnMap struct {
	Position  int
	Total     int
	MaxPrefix int
	MinPrefix int
	Combined  bool
}
