package main

import (
	"context"
	"log"
	"os"

	"github.com/jonathan/waitlist-monitor/internal/config"
	"github.com/jonathan/waitlist-monitor/internal/fetch"
	"github.com/jonathan/waitlist-monitor/internal/monitor"
	"github.com/jonathan/waitlist-monitor/internal/notify"
	"github.com/jonathan/waitlist-monitor/internal/observability"
	"github.com/jonathan/waitlist-monitor/internal/state"
	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// loadConfig reads the environment configuration and applies CLI flag
// overrides before validating. Flags win over environment values.
func loadConfig(target, url, stateFile string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if target != "" {
		cfg.TargetKey = target
	}
	if url != "" {
		cfg.URL = url
	}
	if stateFile != "" {
		cfg.StateFile = stateFile
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunner(cfg *config.Config) *monitor.Runner {
	var mailer notify.Mailer
	if m := cfg.Mailer(); m.Configured() {
		mailer = m
	} else {
		log.Printf("[MAIL] SMTP not fully configured; notifications will print to stdout")
	}

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(os.Stdout)
	}

	return &monitor.Runner{
		Config: cfg,
		Store:  state.NewStore(cfg.StateFile),
		Mailer: mailer,
		Fetch: func(ctx context.Context) ([]waitlist.TableRow, error) {
			return fetch.Table(ctx, cfg.URL, fetch.DefaultTimeout, cfg.Verbose)
		},
		Out:     os.Stdout,
		Printer: printer,
	}
}
