package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/config"
	"github.com/Tiliavir/standup-reporter/internal/github"
)

var (
	githubSource string
	githubDryRun bool
	githubKind   string
	githubRepo   string
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "GitHub issue, PR and review request snapshot",
}

var githubRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch assigned issues, PRs and review requests",
	Args:  cobra.NoArgs,
	RunE:  runGitHubRefresh,
}

var githubListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items from the stored snapshot",
	Args:  cobra.NoArgs,
	RunE:  runGitHubList,
}

func init() {
	githubRefreshCmd.Flags().StringVar(&githubSource, "source", "", "Data source: gh or api (default from config)")
	githubRefreshCmd.Flags().BoolVar(&githubDryRun, "dry-run", false, "Show changes without writing the snapshot")
	githubListCmd.Flags().StringVar(&githubKind, "kind", "", "Only list issues, prs or reviews")
	githubListCmd.Flags().StringVar(&githubRepo, "repo", "", `Only list items from matching repositories, e.g. "acme/*"`)
	githubCmd.AddCommand(githubRefreshCmd)
	githubCmd.AddCommand(githubListCmd)
}

// newSource builds the snapshot source named by name, or by the config when
// name is empty.
func newSource(ctx context.Context, cfg config.GitHubConfig, name string) (github.Source, error) {
	if name == "" {
		name = cfg.Source
	}
	switch strings.ToLower(name) {
	case config.SourceGH:
		return github.GHSource{}, nil
	case config.SourceAPI:
		token := os.Getenv(cfg.TokenEnv)
		if token == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.TokenEnv)
		}
		return github.NewAPISource(ctx, cfg.APIURL, token), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want gh or api)", name)
	}
}

func runGitHubRefresh(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr)
	cfg := loadConfig(log)

	ctx, cancel := interruptContext()
	defer cancel()

	src, err := newSource(ctx, cfg.GitHub, githubSource)
	if err != nil {
		exitf(1, "%v", err)
	}

	dryTag := ""
	if githubDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Refreshing GitHub snapshot via %s%s...\n", src.Name(), dryTag)

	path := snapshotPath(cfg)
	res, err := github.Refresh(ctx, src, path, githubDryRun, openStore(cfg, log).Now())
	if err != nil {
		log.Error("github refresh: %v", err)
		os.Exit(1)
	}
	log.Info("github refresh via %s: +%d ~%d -%d", src.Name(), res.Added, res.Updated, res.Removed)

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d added\n", res.Added)
	fmt.Printf("  %d updated\n", res.Updated)
	fmt.Printf("  %d removed\n", res.Removed)
	fmt.Printf("  %d unchanged\n", res.Unchanged)
	return nil
}

func runGitHubList(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr)
	cfg := loadConfig(log)

	kind, err := kindFilter(githubKind)
	if err != nil {
		exitf(1, "%v", err)
	}
	var repo glob.Glob
	if githubRepo != "" {
		if repo, err = glob.Compile(githubRepo, '/'); err != nil {
			exitf(1, "invalid --repo pattern %q: %v", githubRepo, err)
		}
	}
	snap, err := github.LoadSnapshot(snapshotPath(cfg))
	if err != nil {
		log.Warn("%v", err)
	}

	n := 0
	for _, it := range snap.Items() {
		if kind != "" && it.Kind != kind {
			continue
		}
		if repo != nil && !repo.Match(it.Repo()) {
			continue
		}
		fmt.Printf("%-7s #%-6d %s", it.Kind, it.Number, it.Title)
		if it.URL != "" {
			fmt.Printf("  %s", it.URL)
		}
		fmt.Println()
		n++
	}
	if n == 0 {
		fmt.Println("No items. Run `reporter github refresh` first.")
	}
	return nil
}

// kindFilter maps the --kind flag onto a snapshot item kind.
func kindFilter(flag string) (string, error) {
	switch strings.ToLower(flag) {
	case "":
		return "", nil
	case "issues", "issue":
		return github.KindIssue, nil
	case "prs", "pr":
		return github.KindPR, nil
	case "reviews", "review":
		return github.KindReview, nil
	}
	return "", fmt.Errorf("unknown --kind %q (want issues, prs or reviews)", flag)
}
