// Package monitor sequences the fetch-match-parse-diff-notify-persist
// cycle and the watch loop around it. Exactly one cycle runs at a time;
// the loop never starts a new cycle before the previous one's state write
// has completed or aborted.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/waitlist-monitor/internal/config"
	"github.com/jonathan/waitlist-monitor/internal/notify"
	"github.com/jonathan/waitlist-monitor/internal/observability"
	"github.com/jonathan/waitlist-monitor/internal/state"
	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// Fetcher produces the rendered table rows for one cycle.
type Fetcher func(ctx context.Context) ([]waitlist.TableRow, error)

// Runner executes monitor cycles against one state store.
type Runner struct {
	Config *config.Config
	Store  *state.Store
	// Mailer is nil when the transport is not fully configured; every
	// notification then goes straight to the fallback channel.
	Mailer notify.Mailer
	Fetch  Fetcher
	// Out is the fallback delivery channel, normally os.Stdout.
	Out io.Writer
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
	// Printer emits verbose boxed summaries when non-nil.
	Printer *observability.Printer
}

// RunOnce executes a single cycle. The returned outcome is meaningful only
// when err is nil. Persisting the new snapshot happens strictly after the
// notification attempt resolves, so the position of record never advances
// without a corresponding notification attempt.
func (r *Runner) RunOnce(ctx context.Context) (notify.Outcome, error) {
	cycleID := uuid.NewString()[:8]
	checkedAt := notify.FormatCheckedAt(r.now().UTC(), r.Config.TimeZone, r.Config.TimeLabel)
	r.logf("[CYCLE %s] checking target %q", cycleID, r.Config.TargetKey)

	prev, err := r.Store.LoadPrevious()
	if err != nil {
		return 0, r.failCycle(cycleID, checkedAt, err)
	}

	rows, err := r.Fetch(ctx)
	if err != nil {
		return 0, r.failCycle(cycleID, checkedAt, fmt.Errorf("fetch rendered table: %w", err))
	}
	r.logf("[CYCLE %s] fetched %d rows", cycleID, len(rows))

	row, err := waitlist.FindRow(rows, r.Config.KeyColumn, r.Config.TargetKey)
	if err != nil {
		var noMatch *waitlist.NoMatchError
		if errors.As(err, &noMatch) {
			// The entry being absent is itself worth a notification:
			// the operator needs to know without re-running.
			log.Printf("[CYCLE %s] %v", cycleID, err)
			p := notify.BuildNotFoundPayload(noMatch.TargetKey, noMatch.Rows, checkedAt, r.Config.SubjectPrefix)
			if _, derr := notify.Deliver(p, r.Mailer, r.out()); derr != nil {
				log.Printf("[CYCLE %s] not-found notification lost: %v", cycleID, derr)
			}
			return 0, err
		}
		return 0, r.failCycle(cycleID, checkedAt, err)
	}
	r.logf("[CYCLE %s] matched row: %v", cycleID, row)

	snap, err := waitlist.ParseRow(row, r.Config.Columns)
	if err != nil {
		return 0, r.failCycle(cycleID, checkedAt, fmt.Errorf("parse matched row %v: %w", row, err))
	}

	var prevSnap *waitlist.Snapshot
	if prev != nil {
		prevSnap = &prev.Snapshot
	}

	payload := notify.BuildPayload(prevSnap, snap, r.Config.TargetKey, checkedAt, r.Config.SubjectPrefix)
	if r.Printer != nil {
		r.Printer.PrintNotification(payload)
	}

	outcome, err := notify.Deliver(payload, r.Mailer, r.out())
	if err != nil {
		// Both channels failed; the result is lost. Do not advance the
		// position of record.
		log.Printf("[CYCLE %s] notification lost on both channels: %v", cycleID, err)
		return outcome, err
	}

	rec := state.Record{Snapshot: snap, CheckedAt: r.now().UTC()}
	if err := r.Store.SavePresent(rec); err != nil {
		// The notification already went out; the old snapshot stays
		// authoritative for the next run (at-least-once semantics).
		return outcome, fmt.Errorf("persist snapshot after notification: %w", err)
	}

	if r.Printer != nil {
		r.Printer.PrintCycleSummary(prevSnap, snap, outcome)
	}
	r.logf("[CYCLE %s] done, delivery %s", cycleID, outcome)
	return outcome, nil
}

// failCycle surfaces a fatal pre-notification error and attempts a
// best-effort error notification so the operator hears about the failure
// through the same channels as a result.
func (r *Runner) failCycle(cycleID, checkedAt string, err error) error {
	log.Printf("[CYCLE %s] failed: %v", cycleID, err)
	p := notify.BuildErrorPayload(err, checkedAt, r.Config.SubjectPrefix)
	if _, derr := notify.Deliver(p, r.Mailer, r.out()); derr != nil {
		log.Printf("[CYCLE %s] error notification lost: %v", cycleID, derr)
	}
	return err
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r *Runner) logf(format string, args ...any) {
	if r.Config.Verbose {
		log.Printf(format, args...)
	}
}
