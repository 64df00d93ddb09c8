package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/github"
	"github.com/Tiliavir/standup-reporter/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's log summary, LLM settings and GitHub snapshot age",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr)
	cfg := loadConfig(log)
	store := openStore(cfg, log)
	now := store.Now()

	entries, err := store.Entries(timecalc.StartOfDay(now), timecalc.EndOfDay(now))
	if err != nil {
		exitf(2, "%v", err)
	}
	fmt.Printf("Today (%s): %d entries\n", timecalc.DateLabel(now), len(entries))
	if n := len(entries); n > 0 {
		last := entries[n-1]
		fmt.Printf("  Last: %s %s\n", last.Time, last.Description)
	}

	llm := cfg.LocalLLM
	if llm.Enabled {
		fmt.Printf("LLM: enabled (%s via %s)\n", llm.Model, llm.API)
	} else {
		fmt.Println("LLM: disabled")
	}

	snap, err := github.LoadSnapshot(snapshotPath(cfg))
	if err != nil {
		log.Warn("%v", err)
	}
	fmt.Printf("GitHub: %d issues, %d PRs, %d review requests (updated %s)\n",
		len(snap.MyIssues), len(snap.MyPRs), len(snap.MyReviews), timecalc.FormatAge(now, snap.UpdatedAt))
	return nil
}
