package monitor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/waitlist-monitor/internal/config"
	"github.com/jonathan/waitlist-monitor/internal/notify"
	"github.com/jonathan/waitlist-monitor/internal/state"
	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

type recordingMailer struct {
	err      error
	subjects []string
	bodies   []string
}

func (m *recordingMailer) Send(subject, body string) error {
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return m.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		URL:           "https://example.com/waitlist",
		TargetKey:     "2023-11-01 9:00AM EST",
		StateFile:     filepath.Join(t.TempDir(), "state.json"),
		KeyColumn:     0,
		Columns:       waitlist.ColumnMap{Position: 1, MaxPrefix: 2, MinPrefix: 3, Combined: true},
		CheckInterval: 12 * time.Hour,
		TimeZone:      "UTC",
		TimeLabel:     "UTC",
		SubjectPrefix: "[ARIN Waitlist]",
	}
}

func staticRows(rows []waitlist.TableRow) Fetcher {
	return func(context.Context) ([]waitlist.TableRow, error) {
		return rows, nil
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, fetch Fetcher, mailer notify.Mailer, out *bytes.Buffer) *Runner {
	t.Helper()
	return &Runner{
		Config: cfg,
		Store:  state.NewStore(cfg.StateFile),
		Mailer: mailer,
		Fetch:  fetch,
		Out:    out,
		Now:    func() time.Time { return time.Date(2023, 11, 1, 14, 0, 0, 0, time.UTC) },
	}
}

func TestRunOnce_FirstRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	mailer := &recordingMailer{}
	var out bytes.Buffer
	rows := []waitlist.TableRow{{"2023-11-01 9:00AM EST", "50/9000", "8", "24"}}
	r := newTestRunner(t, cfg, staticRows(rows), mailer, &out)

	outcome, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notify.OutcomeSent, outcome)

	require.Len(t, mailer.bodies, 1)
	body := mailer.bodies[0]
	assert.Contains(t, body, "50/9000")
	assert.Contains(t, body, notify.NoPreviousRecord)
	assert.Contains(t, body, "2023-11-01 9:00AM EST")
	assert.Contains(t, body, "Max Prefix: /8 | Min Prefix: /24")
	assert.Equal(t, "[ARIN Waitlist] Position: 50/9000", mailer.subjects[0])
	assert.Zero(t, out.Len())

	persisted, err := r.Store.LoadPrevious()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, waitlist.Snapshot{Position: 50, Total: 9000, MaxPrefix: 8, MinPrefix: 24}, persisted.Snapshot)
}

func TestRunOnce_PreviousSnapshotInBody(t *testing.T) {
	cfg := testConfig(t)
	store := state.NewStore(cfg.StateFile)
	require.NoError(t, store.SavePresent(state.Record{
		Snapshot: waitlist.Snapshot{Position: 55, Total: 8990, MaxPrefix: 8, MinPrefix: 24},
	}))

	mailer := &recordingMailer{}
	var out bytes.Buffer
	rows := []waitlist.TableRow{{"2023-11-01 9:00AM EST", "50/9000", "8", "24"}}
	r := newTestRunner(t, cfg, staticRows(rows), mailer, &out)

	_, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Contains(t, mailer.bodies[0], "55/8990")
	assert.NotContains(t, mailer.bodies[0], notify.NoPreviousRecord)
}

func TestRunOnce_TransportFailurePersistsAfterFallback(t *testing.T) {
	cfg := testConfig(t)
	mailer := &recordingMailer{err: errors.New("connection refused")}
	var out bytes.Buffer
	rows := []waitlist.TableRow{{"2023-11-01 9:00AM EST", "50/9000", "8", "24"}}
	r := newTestRunner(t, cfg, staticRows(rows), mailer, &out)

	outcome, err := r.RunOnce(context.Background())
	require.NoError(t, err, "a transport failure is not fatal for the cycle")
	assert.Equal(t, notify.OutcomeFallback, outcome)

	// The full notification hits stdout exactly once.
	assert.Equal(t, 1, strings.Count(out.String(), "Subject: [ARIN Waitlist] Position: 50/9000"))
	assert.Len(t, mailer.subjects, 1, "no retry within the cycle")

	// The new snapshot is still persisted.
	persisted, err := r.Store.LoadPrevious()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 50, persisted.Position)
}

func TestRunOnce_NoMatchIsFatalAndNotified(t *testing.T) {
	cfg := testConfig(t)
	mailer := &recordingMailer{}
	var out bytes.Buffer
	rows := []waitlist.TableRow{{"some other entry", "50/9000", "8", "24"}}
	r := newTestRunner(t, cfg, staticRows(rows), mailer, &out)

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)

	var noMatch *waitlist.NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, cfg.TargetKey, noMatch.TargetKey)

	require.Len(t, mailer.subjects, 1)
	assert.Equal(t, "[ARIN Waitlist] NOT FOUND", mailer.subjects[0])
	assert.Contains(t, mailer.bodies[0], cfg.TargetKey)

	// State never advances on a fatal cycle.
	persisted, err := r.Store.LoadPrevious()
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestRunOnce_MalformedFieldIsFatal(t *testing.T) {
	cfg := testConfig(t)
	mailer := &recordingMailer{}
	var out bytes.Buffer
	rows := []waitlist.TableRow{{"2023-11-01 9:00AM EST", "pending", "8", "24"}}
	r := newTestRunner(t, cfg, staticRows(rows), mailer, &out)

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)

	var malformed *waitlist.MalformedFieldError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, err.Error(), "pending", "raw cell is surfaced for diagnosis")

	require.Len(t, mailer.subjects, 1)
	assert.Equal(t, "[ARIN Waitlist] ERROR", mailer.subjects[0])
}

func TestRunOnce_FetchFailureIsFatalAndNotified(t *testing.T) {
	cfg := testConfig(t)
	mailer := &recordingMailer{}
	var out bytes.Buffer
	fetch := func(context.Context) ([]waitlist.TableRow, error) {
		return nil, errors.New("render timed out")
	}
	r := newTestRunner(t, cfg, fetch, mailer, &out)

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render timed out")
	require.Len(t, mailer.subjects, 1)
	assert.Equal(t, "[ARIN Waitlist] ERROR", mailer.subjects[0])
}

func TestRunOnce_CorruptStateIsFatalBeforeFetch(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, writeFile(cfg.StateFile, "{corrupt"))

	fetches := 0
	fetch := func(context.Context) ([]waitlist.TableRow, error) {
		fetches++
		return nil, nil
	}
	var out bytes.Buffer
	r := newTestRunner(t, cfg, fetch, &recordingMailer{}, &out)

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)

	var storeErr *state.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Zero(t, fetches)
}

func TestRunOnce_FallbackWriteFailureIsFatalAndDoesNotPersist(t *testing.T) {
	cfg := testConfig(t)
	mailer := &recordingMailer{err: errors.New("auth failed")}
	rows := []waitlist.TableRow{{"2023-11-01 9:00AM EST", "50/9000", "8", "24"}}
	r := newTestRunner(t, cfg, staticRows(rows), mailer, nil)
	r.Out = failingWriter{}

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)

	persisted, err := r.Store.LoadPrevious()
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
