package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/github"
	"github.com/Tiliavir/standup-reporter/internal/report"
	"github.com/Tiliavir/standup-reporter/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the dashboard, so diagnostics go to the file only.
	log := newLogger(nil)
	cfg := loadConfig(log)
	store := openStore(cfg, log)
	path := snapshotPath(cfg)

	snap, err := github.LoadSnapshot(path)
	if err != nil {
		log.Warn("%v", err)
	}
	var refs []string
	for _, it := range snap.Items() {
		refs = append(refs, it.IssueRef())
	}

	refresh := func(ctx context.Context) (github.RefreshResult, error) {
		current := loadConfig(log)
		src, err := newSource(ctx, current.GitHub, "")
		if err != nil {
			return github.RefreshResult{}, err
		}
		return github.Refresh(ctx, src, path, false, store.Now())
	}

	d := tui.New(store,
		report.NewRequestor(configProvider(), report.WithLogger(log)),
		tui.WithOrganizations(cfg.Worklog.Organizations),
		tui.WithIssueRefs(refs),
		tui.WithRefresher(refresh),
		tui.WithLogger(log),
	)
	if err := tui.Run(d); err != nil {
		log.Error("dashboard: %v", err)
		os.Exit(1)
	}
	return nil
}
