package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup-reporter/internal/model"
)

var (
	exportFormat string
	exportDate   string
	exportWeek   bool
	exportOrg    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export parsed work log entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Export a specific date (YYYY-MM-DD)")
	exportCmd.Flags().BoolVar(&exportWeek, "week", false, "Export the whole week")
	exportCmd.Flags().StringVar(&exportOrg, "org", "", "Only entries whose organization matches (exact or glob)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr)
	store := openStore(loadConfig(log), log)

	from, to, err := resolveRange(exportDate, exportWeek, store.Now())
	if err != nil {
		exitf(1, "%v", err)
	}
	entries, err := store.Entries(from, to)
	if err != nil {
		exitf(2, "%v", err)
	}
	entries = filterByOrganization(entries, exportOrg)

	switch exportFormat {
	case "json":
		err = writeJSON(os.Stdout, entries)
	case "md":
		err = writeMarkdown(os.Stdout, entries)
	case "csv":
		err = writeCSV(os.Stdout, entries)
	default:
		exitf(1, "unknown --format %q (want csv, json or md)", exportFormat)
	}
	if err != nil {
		exitf(2, "%v", err)
	}
	return nil
}

// filterByOrganization keeps entries whose organization matches pattern. An
// invalid glob falls back to exact comparison.
func filterByOrganization(entries []model.Entry, pattern string) []model.Entry {
	if pattern == "" {
		return entries
	}
	match := func(s string) bool { return s == pattern }
	if g, err := glob.Compile(pattern); err == nil {
		match = g.Match
	}
	var out []model.Entry
	for _, e := range entries {
		if match(e.Organization) {
			out = append(out, e)
		}
	}
	return out
}

func writeCSV(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "time", "organization", "issue_ref", "description"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Date, e.Time, e.Organization, e.IssueRef, e.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, entries []model.Entry) error {
	if entries == nil {
		entries = []model.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// writeMarkdown groups entries under a heading per day.
func writeMarkdown(w io.Writer, entries []model.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}
	var day string
	for _, e := range entries {
		if e.Date != day {
			if day != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "## %s\n\n", e.Date)
			day = e.Date
		}
		line := "- " + e.Time
		if e.Organization != "" {
			line += " **" + e.Organization + "**"
		}
		if e.IssueRef != "" {
			line += " _" + e.IssueRef + "_"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", line, strings.ReplaceAll(e.Description, "\n", "\n  ")); err != nil {
			return err
		}
	}
	return nil
}
