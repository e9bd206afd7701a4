// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/waitlist-monitor/internal/notify"
	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines on rune boundaries
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCycleSummary outputs a human-readable summary of one completed cycle.
func (p *Printer) PrintCycleSummary(previous *waitlist.Snapshot, current waitlist.Snapshot, outcome notify.Outcome) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Position:  %d/%d\n", current.Position, current.Total))
	if previous != nil {
		sb.WriteString(fmt.Sprintf("Previous:  %d/%d", previous.Position, previous.Total))
		if delta := previous.Position - current.Position; delta != 0 {
			sb.WriteString(fmt.Sprintf(" (moved %+d)", delta))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Previous:  none (first run)\n")
	}
	sb.WriteString(fmt.Sprintf("Prefixes:  max /%d, min /%d\n", current.MaxPrefix, current.MinPrefix))
	sb.WriteString(fmt.Sprintf("Delivery:  %s", outcome))

	p.printBox("CYCLE RESULT", sb.String())
}

// PrintNotification outputs the rendered notification before delivery.
func (p *Printer) PrintNotification(payload notify.Payload) {
	content := fmt.Sprintf("Subject: %s\n\n%s", payload.Subject, strings.TrimSuffix(payload.Body, "\n"))
	p.printBox("NOTIFICATION", content)
}
