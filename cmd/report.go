package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/report"
	"github.com/Tiliavir/standup-reporter/internal/timecalc"
)

var (
	reportWeek bool
	reportCopy bool
	reportSave bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a standup report from the work log",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Summarize this week instead of today")
	reportCmd.Flags().BoolVar(&reportCopy, "copy", false, "Copy the report to the clipboard")
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "Archive the report under <data_dir>/reports/")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr)
	cfg := loadConfig(log)
	store := openStore(cfg, log)
	now := store.Now()

	var text string
	if reportWeek {
		from, to := timecalc.WeekRange(now)
		text = store.RangeLog(from, to)
	} else if day, ok := store.DayLog(now); ok {
		text = day
	}
	if text == "" {
		exitf(1, "No work log entries to process.")
	}

	ctx, cancel := interruptContext()
	defer cancel()

	requestor := report.NewRequestor(configProvider(), report.WithLogger(log))
	res := requestor.Summarize(ctx, text)
	if res.Chunked {
		fmt.Fprintln(os.Stderr, "Note: the work log was shortened to its most recent entries.")
	}
	if !res.OK() {
		exitf(1, "%s", res.Message())
	}
	fmt.Println(res.Message())

	if reportCopy {
		if err := clipboard.WriteAll(res.Text); err != nil {
			exitf(1, "Could not copy to clipboard: %v", err)
		}
		fmt.Fprintln(os.Stderr, "Copied to clipboard.")
	}
	if reportSave {
		path, err := archiveReport(resolveDataDir(cfg), now, res.Text)
		if err != nil {
			exitf(2, "%v", err)
		}
		fmt.Fprintf(os.Stderr, "Saved to %s\n", path)
	}
	return nil
}

// archiveReport writes text to <dir>/reports/report_<date>_<id>.md.
func archiveReport(dir string, now time.Time, text string) (string, error) {
	reportsDir := filepath.Join(dir, "reports")
	if err := os.MkdirAll(reportsDir, 0o700); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}
	name := fmt.Sprintf("report_%s_%s.md", timecalc.DateLabel(now), uuid.NewString()[:8])
	path := filepath.Join(reportsDir, name)
	if err := os.WriteFile(path, []byte(text+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
