// Package main provides the entry point for the waiting-list position monitor.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waitlist_monitor",
	Short: "Waiting-list position monitor",
	Long: "waitlist_monitor watches a JavaScript-rendered waiting-list table, finds your entry " +
		"by its exact date-added string, diffs the position against the last persisted check, " +
		"and emails the result (printing to stdout when mail delivery fails).",
}

// exitCode distinguishes the delivery paths for operator scripting:
// 0 = notification sent, 2 = degraded to stdout fallback, 3 = fatal error.
var exitCode int

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(3)
	}
	os.Exit(exitCode)
}
