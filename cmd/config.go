package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path, creating the annotated template if missing",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configPathCmd)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	if err := config.EnsureFile(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println(path)
	return nil
}
