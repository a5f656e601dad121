package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/stats"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply lifecycle events read from stdin",
	Long: `Reads newline-delimited lifecycle events and applies them to the statistics.

Each line is one event:
  {"kind":"created","task":{...}}
  {"kind":"updated","before":{...},"after":{...}}
  {"kind":"deleted","task":{...}}

One JSON report is printed per event. Malformed lines are reported as
invalid and do not stop the run.

Examples:
  taskpulse apply < events.ndjson
  taskpulse apply --file events.ndjson --summary`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

var (
	applyFile    string
	applySummary bool
)

const maxEventLine = 1 << 20

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Read events from file instead of stdin")
	applyCmd.Flags().BoolVar(&applySummary, "summary", false, "Print only outcome totals")
}

func runApply(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if applyFile != "" {
		f, err := os.Open(applyFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", applyFile, err)
		}
		defer f.Close()
		in = f
	}

	a, err := newAppContext(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	totals, err := applyEvents(cmd.Context(), a.Engine, in, cmd.OutOrStdout(), !applySummary)
	if err != nil {
		return err
	}
	if applySummary {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(totals)
	}
	return nil
}

type eventApplier interface {
	Apply(ctx context.Context, ev domain.LifecycleEvent) stats.Report
}

// applyEvents applies each line of in and returns the count per outcome.
func applyEvents(ctx context.Context, engine eventApplier, in io.Reader, out io.Writer, verbose bool) (map[string]int, error) {
	enc := json.NewEncoder(out)
	totals := make(map[string]int)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxEventLine)
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var report stats.Report
		ev, err := domain.ParseLifecycleEvent(raw)
		if err != nil {
			report = stats.Report{Kind: ev.Kind, TaskID: ev.TaskID(), Outcome: stats.OutcomeInvalid, Error: fmt.Sprintf("line %d: %v", line, err)}
		} else {
			report = engine.Apply(ctx, ev)
		}

		totals[report.Outcome]++
		if verbose {
			if err := enc.Encode(report); err != nil {
				return totals, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return totals, fmt.Errorf("failed to read events: %w", err)
	}
	return totals, nil
}
