package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logsLines int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the most recent diagnostic log lines",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 20, "Number of lines to show")
}

func runLogs(cmd *cobra.Command, args []string) error {
	log := newLogger(nil)
	if log == nil {
		return nil
	}
	lines := log.Tail(logsLines)
	if len(lines) == 0 {
		fmt.Printf("No diagnostics in %s.\n", log.Path())
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
