package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "reporter",
	Short: "Standup Reporter – a personal work log with local LLM standup reports",
	Long: `reporter keeps a plain-text work log in ~/.reporter/user_data/, one file
per day, and can turn it into a standup report using a locally hosted model.
Run without a subcommand to open the interactive dashboard.`,
	Args:          cobra.NoArgs,
	RunE:          runDashboard,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.reporter/context.yml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Work log directory (overrides worklog.data_dir)")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(dashboardCmd)
}
