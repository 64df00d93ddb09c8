package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/timecalc"
)

var (
	logOrg   string
	logIssue string
)

var logCmd = &cobra.Command{
	Use:   "log <description...>",
	Short: "Append a work log entry for today",
	Args:  cobra.ArbitraryArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logOrg, "org", "", "Organization")
	logCmd.Flags().StringVar(&logIssue, "issue", "", `Issue or PR reference, e.g. "42# fix login"`)
}

func runLog(cmd *cobra.Command, args []string) error {
	desc := strings.TrimSpace(strings.Join(args, " "))
	if desc == "" {
		exitf(1, "Please enter some work description.")
	}

	log := newLogger(os.Stderr)
	store := openStore(loadConfig(log), log)
	if !store.SaveEntry(logOrg, logIssue, desc) {
		os.Exit(2)
	}
	fmt.Printf("Logged at %s.\n", store.Now().Format(timecalc.TimeLayout))
	return nil
}
