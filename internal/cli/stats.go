package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/taskpulse/internal/reports"
	"github.com/emiliopalmerini/taskpulse/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a user's task statistics",
	Long: `Show the dashboard for one user: status counts, top tags,
daily completions and completion latency.

Examples:
  taskpulse stats u1                # Last 7 days, top 10 tags
  taskpulse stats u1 --days 30      # Last 30 days
  taskpulse stats u1 --json         # Raw JSON, as served by the API`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

// Flags
var (
	statsDays int
	statsTags int
	statsJSON bool
)

const barWidth = 20

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVarP(&statsDays, "days", "d", 7, "Number of days of completions to show")
	statsCmd.Flags().IntVarP(&statsTags, "tags", "t", 10, "Number of top tags to show")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print JSON instead of a table")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newAppContext(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	d, err := a.Query.GetDashboard(cmd.Context(), args[0], statsTags, statsDays)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports.NewDashboardResponse(d))
	}
	printDashboard(cmd.OutOrStdout(), d)
	return nil
}

func printDashboard(w io.Writer, d *domain.Dashboard) {
	s := theme.Default()

	sections := []string{
		s.Title.Render("taskpulse stats for " + d.UserID),
		renderStatus(s, d.Status),
		renderTags(s, d.TopTags),
		renderCompletions(s, d.Completions),
		renderProductivity(s, d.Productivity),
	}
	fmt.Fprintln(w, s.Card.Render(lipgloss.JoinVertical(lipgloss.Left, sections...)))
}

func renderStatus(s *theme.Styles, c domain.StatusCounts) string {
	var b strings.Builder
	b.WriteString(s.Subtitle.Render("Status") + "\n")
	total := c.Total()
	for _, st := range domain.Statuses {
		n := c.Get(st)
		label := s.Label.Foreground(theme.StatusColor(string(st))).Render(st.Label())
		fmt.Fprintf(&b, "%s %s %s\n", label, s.RenderBar(n, total, barWidth), s.Value.Render(util.FormatNumber(n)))
	}
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Total"), s.Value.Render(util.FormatNumber(total)))
	return b.String()
}

func renderTags(s *theme.Styles, tags []domain.TagScore) string {
	var b strings.Builder
	b.WriteString(s.Subtitle.Render("Top tags") + "\n")
	if len(tags) == 0 {
		b.WriteString(s.Muted.Render("no tags yet") + "\n")
		return b.String()
	}
	top := tags[0].Score
	for _, t := range tags {
		fmt.Fprintf(&b, "%s %s %s\n", s.Label.Render(t.Tag), s.RenderBar(t.Score, top, barWidth), s.Value.Render(util.FormatNumber(t.Score)))
	}
	return b.String()
}

func renderCompletions(s *theme.Styles, days map[string]int64) string {
	var b strings.Builder
	b.WriteString(s.Subtitle.Render("Completions") + "\n")

	keys := make([]string, 0, len(days))
	var top int64
	for day, n := range days {
		keys = append(keys, day)
		top = max(top, n)
	}
	sort.Strings(keys)

	for _, day := range keys {
		n := days[day]
		fmt.Fprintf(&b, "%s %s %s\n", s.Label.Render(util.FormatDateHuman(day)), s.RenderBar(n, top, barWidth), s.Value.Render(util.FormatNumber(n)))
	}
	return b.String()
}

func renderProductivity(s *theme.Styles, p domain.ProductivitySummary) string {
	var b strings.Builder
	b.WriteString(s.Subtitle.Render("Productivity") + "\n")
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Avg completion"), s.Value.Render(util.FormatDurationMs(p.AvgCompletionMs)))
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Completed"), s.Value.Render(util.FormatNumber(p.CountCompleted)))
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Created "+p.Date), s.Value.Render(util.FormatNumber(p.TasksCreatedToday)))
	return b.String()
}
