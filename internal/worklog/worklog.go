package worklog

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Tiliavir/standup-reporter/internal/diag"
	"github.com/Tiliavir/standup-reporter/internal/model"
	"github.com/Tiliavir/standup-reporter/internal/timecalc"
)

// Placeholder values a picker shows when nothing is selected. They are
// treated as blank when composing a line.
const (
	PlaceholderOrganization = "Select organization..."
	PlaceholderIssue        = "Select issue/PR..."
)

// Store appends work entries to one flat file per day and reads them back.
type Store struct {
	dir   string
	clock timecalc.Clock
	log   *diag.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the clock used to resolve "today" and entry timestamps.
func WithClock(c timecalc.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the diagnostic logger that receives I/O errors.
func WithLogger(l *diag.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a Store rooted at dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, clock: timecalc.SystemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDataDir returns ~/.reporter/user_data.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".reporter", "user_data"), nil
}

// DataDir returns the store directory, creating it if needed.
func (s *Store) DataDir() (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("storage error creating %s: %w", s.dir, err)
	}
	return s.dir, nil
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// FilePath returns the log file for the given day.
func FilePath(dir string, day time.Time) string {
	return filepath.Join(dir, "worklog_"+timecalc.DateLabel(day)+".txt")
}

func blank(v, placeholder string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == placeholder
}

// FormatLine renders one log line, including the trailing newline. Blank or
// placeholder organization and issue values drop their bracket group.
func FormatLine(t time.Time, organization, issueRef, description string) string {
	var b strings.Builder
	b.WriteString(t.Format(timecalc.DateLayout + " " + timecalc.TimeLayout))
	if !blank(organization, PlaceholderOrganization) {
		b.WriteString(" [" + strings.TrimSpace(organization) + "]")
	}
	if !blank(issueRef, PlaceholderIssue) {
		b.WriteString(" [" + strings.TrimSpace(issueRef) + "]")
	}
	b.WriteString(" - ")
	b.WriteString(description)
	b.WriteString("\n")
	return b.String()
}

// Append writes one entry stamped with the current time to today's file.
// The file is only ever opened for appending.
func (s *Store) Append(organization, issueRef, description string) error {
	now := s.clock.Now()
	dir, err := s.DataDir()
	if err != nil {
		return err
	}
	path := FilePath(dir, now)
	line := FormatLine(now, organization, issueRef, description)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("storage error opening %s: %w", path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("storage error writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("storage error closing %s: %w", path, err)
	}
	return nil
}

// SaveEntry appends an entry and reports whether it was written. Failures go
// to the diagnostic log; they are never returned or raised.
func (s *Store) SaveEntry(organization, issueRef, description string) bool {
	if err := s.Append(organization, issueRef, description); err != nil {
		s.log.Error("saving work log entry: %v", err)
		return false
	}
	return true
}

// NoEntriesMessage is shown in place of a day's log when nothing was recorded.
func NoEntriesMessage(day time.Time) string {
	return fmt.Sprintf("No entries yet for %s.", timecalc.DateLabel(day))
}

// DayLog returns the trimmed contents of the given day's file and whether
// any entries exist. Missing or unreadable files yield the no-entries text.
func (s *Store) DayLog(day time.Time) (string, bool) {
	path := FilePath(s.dir, day)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NoEntriesMessage(day), false
	}
	if err != nil {
		s.log.Error("storage error reading %s: %v", path, err)
		return NoEntriesMessage(day), false
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return NoEntriesMessage(day), false
	}
	return text, true
}

// TodayLog returns today's accumulated log.
func (s *Store) TodayLog() string {
	text, _ := s.DayLog(s.clock.Now())
	return text
}

// RangeLog concatenates the logs of every day in [from, to] that has
// entries, oldest first. It returns "" when none do.
func (s *Store) RangeLog(from, to time.Time) string {
	var parts []string
	for _, day := range timecalc.Days(from, to) {
		if text, ok := s.DayLog(day); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

var lineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{2}:\d{2})((?: \[[^\]]*\])*) - (.*)$`)
var groupRe = regexp.MustCompile(`\[([^\]]*)\]`)

// ParseLine splits a log line back into its fields. The format has no
// escaping, so this is best effort: with a single bracket group there is no
// way to tell organization from issue, and it is read as the organization.
func ParseLine(line string) (model.Entry, bool) {
	m := lineRe.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return model.Entry{}, false
	}
	e := model.Entry{Date: m[1], Time: m[2], Description: m[4]}
	groups := groupRe.FindAllStringSubmatch(m[3], -1)
	if len(groups) > 0 {
		e.Organization = groups[0][1]
	}
	if len(groups) > 1 {
		e.IssueRef = groups[1][1]
	}
	return e, true
}

// Entries parses every line stored for the days in [from, to]. Lines that
// do not match the format, such as continuation lines of a multi-line
// description, are appended to the previous entry's description.
func (s *Store) Entries(from, to time.Time) ([]model.Entry, error) {
	var entries []model.Entry
	for _, day := range timecalc.Days(from, to) {
		path := FilePath(s.dir, day)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("storage error reading %s: %w", path, err)
		}
		first := len(entries)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if e, ok := ParseLine(line); ok {
				entries = append(entries, e)
				continue
			}
			if n := len(entries); n > first && strings.TrimSpace(line) != "" {
				entries[n-1].Description += "\n" + line
			}
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("storage error scanning %s: %w", path, err)
		}
	}
	return entries, nil
}
