package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run check cycles on a fixed interval until interrupted",
	Long: "Runs the check cycle repeatedly with a fixed sleep between completions. A failed " +
		"cycle is logged and the loop continues. SIGINT/SIGTERM stop the loop at the next " +
		"cycle boundary; an in-flight cycle finishes first.",
	RunE: runWatch,
}

var (
	watchTarget        string
	watchURL           string
	watchStateFile     string
	watchVerbose       bool
	watchIntervalHours int
)

func init() {
	watchCmd.Flags().StringVarP(&watchTarget, "target", "t", "", "Target date-added string exactly as rendered (overrides WAITLIST_TARGET_DATE)")
	watchCmd.Flags().StringVar(&watchURL, "url", "", "Waiting-list page URL (overrides WAITLIST_URL)")
	watchCmd.Flags().StringVar(&watchStateFile, "state-file", "", "Path to the snapshot state file (overrides WAITLIST_STATE_FILE)")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Print detailed progress information")
	watchCmd.Flags().IntVar(&watchIntervalHours, "interval-hours", 0, "Hours between cycles (overrides WAITLIST_CHECK_INTERVAL_HOURS, default 12)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(watchTarget, watchURL, watchStateFile, watchVerbose)
	if err != nil {
		return err
	}

	interval := cfg.CheckInterval
	if watchIntervalHours > 0 {
		interval = time.Duration(watchIntervalHours) * time.Hour
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[WATCH] interval %s, target %q, state file %s", interval, cfg.TargetKey, cfg.StateFile)
	return newRunner(cfg).Watch(ctx, interval)
}
