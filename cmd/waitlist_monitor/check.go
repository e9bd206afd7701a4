package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/waitlist-monitor/internal/notify"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle and exit",
	Long: "Fetches the rendered waiting-list table once, diffs your position against the " +
		"previous check, and sends the notification. Exits 0 when the notification was sent, " +
		"2 when it degraded to standard output, 3 on a fatal error.",
	RunE: runCheck,
}

var (
	checkTarget    string
	checkURL       string
	checkStateFile string
	checkVerbose   bool
)

func init() {
	checkCmd.Flags().StringVarP(&checkTarget, "target", "t", "", "Target date-added string exactly as rendered (overrides WAITLIST_TARGET_DATE)")
	checkCmd.Flags().StringVar(&checkURL, "url", "", "Waiting-list page URL (overrides WAITLIST_URL)")
	checkCmd.Flags().StringVar(&checkStateFile, "state-file", "", "Path to the snapshot state file (overrides WAITLIST_STATE_FILE)")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(checkTarget, checkURL, checkStateFile, checkVerbose)
	if err != nil {
		return err
	}

	outcome, err := newRunner(cfg).RunOnce(context.Background())
	if err != nil {
		return err
	}
	if outcome == notify.OutcomeFallback {
		exitCode = 2
	}
	return nil
}
