// Package github keeps a local snapshot of the user's open issues, pull
// requests and review requests so entries can reference them.
package github

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SnapshotFile is the snapshot's file name inside the data directory.
const SnapshotFile = "github_data.yml"

// Item kinds.
const (
	KindIssue  = "issue"
	KindPR     = "pr"
	KindReview = "review"
)

// Snapshot maps issue/PR numbers to "title [url]" per category.
type Snapshot struct {
	AccountName string            `yaml:"account name"`
	MyIssues    map[string]string `yaml:"my_issues"`
	MyPRs       map[string]string `yaml:"my_prs"`
	MyReviews   map[string]string `yaml:"my_reviews"`
	UpdatedAt   time.Time         `yaml:"updated_at,omitempty"`
}

// NewSnapshot returns a Snapshot with empty, non-nil maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		MyIssues:  map[string]string{},
		MyPRs:     map[string]string{},
		MyReviews: map[string]string{},
	}
}

// Len is the total number of items across all categories.
func (s Snapshot) Len() int {
	return len(s.MyIssues) + len(s.MyPRs) + len(s.MyReviews)
}

func (s Snapshot) categories() []struct {
	kind string
	m    map[string]string
} {
	return []struct {
		kind string
		m    map[string]string
	}{
		{KindIssue, s.MyIssues},
		{KindPR, s.MyPRs},
		{KindReview, s.MyReviews},
	}
}

// Item is one flattened snapshot entry.
type Item struct {
	Kind   string
	Number int
	Title  string
	URL    string
}

// IssueRef renders the item the way entries reference it.
func (i Item) IssueRef() string {
	return fmt.Sprintf("%d# %s", i.Number, i.Title)
}

// Repo returns "owner/name" parsed from the item URL, or "" when the URL has
// no such path.
func (i Item) Repo() string {
	rest, ok := strings.CutPrefix(i.URL, "https://")
	if !ok {
		return ""
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 5 {
		return ""
	}
	return parts[1] + "/" + parts[2]
}

// Items flattens the snapshot, ordered by kind then number.
func (s Snapshot) Items() []Item {
	var items []Item
	for _, c := range s.categories() {
		start := len(items)
		for num, val := range c.m {
			n, err := strconv.Atoi(num)
			if err != nil {
				continue
			}
			title, url := splitValue(val)
			items = append(items, Item{Kind: c.kind, Number: n, Title: title, URL: url})
		}
		group := items[start:]
		sort.Slice(group, func(a, b int) bool { return group[a].Number < group[b].Number })
	}
	return items
}

// splitValue separates "title [url]" into its parts.
func splitValue(v string) (title, url string) {
	if strings.HasSuffix(v, "]") {
		if i := strings.LastIndex(v, " ["); i >= 0 {
			return v[:i], v[i+2 : len(v)-1]
		}
	}
	return v, ""
}

// SnapshotPath returns the snapshot location inside dataDir.
func SnapshotPath(dataDir string) string {
	return filepath.Join(dataDir, SnapshotFile)
}

// LoadSnapshot reads the snapshot at path. A missing file yields an empty
// snapshot and no error.
func LoadSnapshot(path string) (Snapshot, error) {
	s := NewSnapshot()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading snapshot: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return NewSnapshot(), fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if s.MyIssues == nil {
		s.MyIssues = map[string]string{}
	}
	if s.MyPRs == nil {
		s.MyPRs = map[string]string{}
	}
	if s.MyReviews == nil {
		s.MyReviews = map[string]string{}
	}
	return s, nil
}

// SaveSnapshot writes s to path atomically.
func SaveSnapshot(path string, s Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}
