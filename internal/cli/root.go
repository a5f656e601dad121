package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskpulse",
	Short: "Task lifecycle statistics engine",
	Long: `taskpulse keeps per-user task statistics in a counter store.

It receives task lifecycle events (created, updated, deleted) after the
primary write has committed and maintains status counters, a tag ranking,
a daily completion timeline and completion-latency aggregates.

Configuration is read from TASKPULSE_* environment variables.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
