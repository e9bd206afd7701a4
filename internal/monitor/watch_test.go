package monitor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

func TestWatch_CancelAfterFirstCycleRunsExactlyOnce(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	cycles := 0
	fetch := func(context.Context) ([]waitlist.TableRow, error) {
		cycles++
		// Cancellation arrives while the cycle is in flight; the cycle
		// still finishes and the loop exits at the next boundary.
		cancel()
		return []waitlist.TableRow{{"2023-11-01 9:00AM EST", "50/9000", "8", "24"}}, nil
	}

	var out bytes.Buffer
	r := newTestRunner(t, cfg, fetch, &recordingMailer{}, &out)

	err := r.Watch(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, cycles)

	// The in-flight cycle completed: its snapshot was persisted.
	persisted, err := r.Store.LoadPrevious()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 50, persisted.Position)
}

func TestWatch_InFlightCycleDoesNotObserveCancellation(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	cycles := 0
	fetch := func(fctx context.Context) ([]waitlist.TableRow, error) {
		cycles++
		// Cancellation lands mid-fetch; a context-aware fetcher must
		// not see it, so the cycle completes normally.
		cancel()
		if err := fctx.Err(); err != nil {
			return nil, err
		}
		return []waitlist.TableRow{{"2023-11-01 9:00AM EST", "50/9000", "8", "24"}}, nil
	}

	mailer := &recordingMailer{}
	var out bytes.Buffer
	r := newTestRunner(t, cfg, fetch, mailer, &out)

	err := r.Watch(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, cycles)

	// The cycle finished: the notification went out as a result, not as
	// an error, and the snapshot was persisted.
	require.Len(t, mailer.subjects, 1)
	assert.Equal(t, "[ARIN Waitlist] Position: 50/9000", mailer.subjects[0])

	persisted, err := r.Store.LoadPrevious()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 50, persisted.Position)
}

func TestWatch_ContinuesPastFatalCycles(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	cycles := 0
	fetch := func(context.Context) ([]waitlist.TableRow, error) {
		cycles++
		if cycles >= 3 {
			cancel()
		}
		return nil, errors.New("render timed out")
	}

	var out bytes.Buffer
	r := newTestRunner(t, cfg, fetch, &recordingMailer{}, &out)

	err := r.Watch(ctx, time.Millisecond)
	require.NoError(t, err)

	// Two fatal cycles did not terminate the loop; a third was attempted.
	assert.GreaterOrEqual(t, cycles, 3)
}

func TestWatch_DefaultsToConfiguredInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.CheckInterval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	cycles := 0
	fetch := func(context.Context) ([]waitlist.TableRow, error) {
		cycles++
		if cycles >= 2 {
			cancel()
		}
		return nil, errors.New("down")
	}

	var out bytes.Buffer
	r := newTestRunner(t, cfg, fetch, &recordingMailer{}, &out)

	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, 0) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not honor cancellation")
	}
	assert.GreaterOrEqual(t, cycles, 2)
}
