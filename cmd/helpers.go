package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Tiliavir/standup-reporter/internal/config"
	"github.com/Tiliavir/standup-reporter/internal/diag"
	"github.com/Tiliavir/standup-reporter/internal/github"
	"github.com/Tiliavir/standup-reporter/internal/timecalc"
	"github.com/Tiliavir/standup-reporter/internal/worklog"
)

// exitf prints to stderr and exits with code. 1 is a user or remote error,
// 2 a local storage failure.
func exitf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	path, err := config.DefaultPath()
	if err != nil {
		exitf(2, "%v", err)
	}
	return path
}

func configProvider() config.FileProvider {
	return config.FileProvider{Path: resolveConfigPath()}
}

// loadConfig reads the config once for command wiring. Problems are reported
// and the defaults are used.
func loadConfig(log *diag.Logger) config.Config {
	cfg, err := configProvider().Load()
	if err != nil {
		log.Warn("%v", err)
	}
	return cfg
}

// newLogger opens the diagnostic log. Warnings and errors are echoed to echo
// when it is non-nil.
func newLogger(echo io.Writer) *diag.Logger {
	path, err := diag.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}
	l, err := diag.New(path, echo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: diagnostic log unavailable: %v\n", err)
		return nil
	}
	return l
}

func resolveDataDir(cfg config.Config) string {
	switch {
	case dataDir != "":
		return dataDir
	case cfg.Worklog.DataDir != "":
		return cfg.Worklog.DataDir
	}
	dir, err := worklog.DefaultDataDir()
	if err != nil {
		exitf(2, "%v", err)
	}
	return dir
}

func openStore(cfg config.Config, log *diag.Logger) *worklog.Store {
	return worklog.New(resolveDataDir(cfg), worklog.WithLogger(log))
}

func snapshotPath(cfg config.Config) string {
	return github.SnapshotPath(resolveDataDir(cfg))
}

// resolveRange turns --date/--week flags into a day range.
func resolveRange(date string, week bool, now time.Time) (time.Time, time.Time, error) {
	day := now
	if date != "" {
		d, err := timecalc.ParseDate(date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		day = d
	}
	if week {
		from, to := timecalc.WeekRange(day)
		return from, to, nil
	}
	return timecalc.StartOfDay(day), timecalc.EndOfDay(day), nil
}

// interruptContext is canceled on Ctrl+C.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
