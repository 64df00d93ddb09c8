package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/timecalc"
)

var (
	todayDate string
	todayWeek bool
	todayCopy bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the work log for today or another day",
	Args:  cobra.NoArgs,
	RunE:  runToday,
}

func init() {
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Show a specific date (YYYY-MM-DD)")
	todayCmd.Flags().BoolVar(&todayWeek, "week", false, "Show the whole week")
	todayCmd.Flags().BoolVar(&todayCopy, "copy", false, "Copy the log to the clipboard")
}

func runToday(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr)
	store := openStore(loadConfig(log), log)

	from, to, err := resolveRange(todayDate, todayWeek, store.Now())
	if err != nil {
		exitf(1, "%v", err)
	}

	var text string
	var ok bool
	if todayWeek {
		text = store.RangeLog(from, to)
		ok = text != ""
		if !ok {
			text = fmt.Sprintf("No entries for week %s.", timecalc.ISOWeekLabel(from))
		}
	} else {
		text, ok = store.DayLog(from)
	}
	fmt.Println(text)

	if todayCopy && ok {
		if err := clipboard.WriteAll(text); err != nil {
			exitf(1, "Could not copy to clipboard: %v", err)
		}
		fmt.Fprintln(os.Stderr, "Copied to clipboard.")
	}
	return nil
}
