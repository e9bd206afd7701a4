package monitor

import (
	"context"
	"log"
	"time"
)

// Watch runs cycles until ctx is canceled, sleeping interval between cycle
// completions. A fatal cycle is logged and the loop continues: a transient
// render or transport failure must not permanently stop monitoring.
// Cancellation takes effect between cycles and during the sleep, never by
// interrupting an in-flight cycle, so the state store is never left
// half-written.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = r.Config.CheckInterval
	}

	for {
		// The cycle itself must not observe cancellation mid-flight;
		// only the sleep below does. An interrupted fetch would fail
		// the cycle and drop a valid result on shutdown.
		if _, err := r.RunOnce(context.WithoutCancel(ctx)); err != nil {
			log.Printf("[WATCH] cycle failed: %v", err)
		}

		r.logf("[WATCH] sleeping %s until next cycle", interval)
		select {
		case <-ctx.Done():
			log.Printf("[WATCH] stop requested, exiting")
			return nil
		case <-time.After(interval):
		}
	}
}
