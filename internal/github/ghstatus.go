package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// columnSep divides the two columns of the `gh status` table.
const columnSep = "│"

var refRe = regexp.MustCompile(`^([^#]+)#(\d+)\s+(.*)`)

type section int

const (
	sectionNone section = iota
	sectionAssigned
	sectionReviews
)

// ParseStatus extracts assigned issues, assigned pull requests and review
// requests from the output of `gh status`.
func ParseStatus(output string) Snapshot {
	s := NewSnapshot()
	sec := sectionNone
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, "Assigned Issues") && strings.Contains(line, "Assigned Pull Requests"):
			sec = sectionAssigned
			continue
		case strings.Contains(line, "Review Requests") && strings.Contains(line, "Mentions"):
			sec = sectionReviews
			continue
		case strings.Contains(line, "Repository Activity"):
			sec = sectionNone
			continue
		}

		left, right := splitColumns(line)
		switch sec {
		case sectionAssigned:
			addRef(s.MyIssues, left, "issues")
			addRef(s.MyPRs, right, "pull")
		case sectionReviews:
			addRef(s.MyReviews, left, "pull")
		}
	}
	return s
}

func splitColumns(line string) (left, right string) {
	parts := strings.SplitN(line, columnSep, 3)
	left = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		right = strings.TrimSpace(parts[1])
	}
	return left, right
}

// addRef parses "owner/repo#N  title" and stores "title [url]" under N.
func addRef(m map[string]string, cell, urlKind string) {
	if cell == "" || strings.HasPrefix(cell, "Nothing here") {
		return
	}
	match := refRe.FindStringSubmatch(cell)
	if match == nil {
		return
	}
	repo, num, title := strings.TrimSpace(match[1]), match[2], match[3]
	m[num] = fmt.Sprintf("%s [https://github.com/%s/%s/%s]", title, repo, urlKind, num)
}

// Runner runs an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec. A non-zero exit is reported with
// the command's stderr.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s failed: %s", name, strings.Join(args, " "), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}

// GHSource builds a snapshot by scraping `gh status`.
type GHSource struct {
	Run Runner
}

func (g GHSource) Name() string { return "gh" }

// Fetch runs `gh status` and parses its output.
func (g GHSource) Fetch(ctx context.Context) (Snapshot, error) {
	run := g.Run
	if run == nil {
		run = ExecRunner
	}
	out, err := run(ctx, "gh", "status")
	if err != nil {
		return Snapshot{}, err
	}
	return ParseStatus(string(out)), nil
}
