// Package tui is the interactive dashboard: quick entry, today's log and an
// optional standup report generated in the background.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/standup-reporter/internal/diag"
	"github.com/Tiliavir/standup-reporter/internal/github"
	"github.com/Tiliavir/standup-reporter/internal/report"
	"github.com/Tiliavir/standup-reporter/internal/timecalc"
	"github.com/Tiliavir/standup-reporter/internal/worklog"
)

// Status messages shown on the status line.
const (
	msgEmptyDescription = "Please enter some work description."
	msgNoEntries        = "No work log entries to process."
	msgSaved            = "Entry saved."
	msgSaveFailed       = "Could not save the entry. Run `reporter logs` for details."
	msgReportBusy       = "A report is already being generated."
	reportHint          = "Press Ctrl+R to generate a standup report."
)

// RefreshFunc refreshes the GitHub snapshot.
type RefreshFunc func(ctx context.Context) (github.RefreshResult, error)

// Option customizes a Dashboard.
type Option func(*Dashboard)

// WithOrganizations sets the organizations offered by the picker.
func WithOrganizations(orgs []string) Option {
	return func(d *Dashboard) {
		d.orgs = append([]string{worklog.PlaceholderOrganization}, orgs...)
	}
}

// WithIssueRefs sets the issue references offered by the picker.
func WithIssueRefs(refs []string) Option {
	return func(d *Dashboard) { d.setIssueRefs(refs) }
}

// WithRefresher enables Ctrl+G.
func WithRefresher(fn RefreshFunc) Option {
	return func(d *Dashboard) { d.refresh = fn }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(d *Dashboard) {
		if fn != nil {
			d.copy = fn
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *diag.Logger) Option {
	return func(d *Dashboard) { d.log = l }
}

type reportDoneMsg struct {
	res report.Result
}

type githubDoneMsg struct {
	res github.RefreshResult
	err error
}

// Dashboard is the bubbletea model.
type Dashboard struct {
	store     *worklog.Store
	requestor *report.Requestor
	log       *diag.Logger
	refresh   RefreshFunc
	copy      func(string) error

	orgs     []string
	issues   []string
	orgIdx   int
	issueIdx int

	input   textinput.Model
	logView viewport.Model
	spinner spinner.Model

	llmEnabled bool
	busy       bool
	cancel     context.CancelFunc
	refreshing bool

	report string
	status string
	day    time.Time

	width  int
	height int
}

// New builds a Dashboard over store and requestor.
func New(store *worklog.Store, requestor *report.Requestor, opts ...Option) *Dashboard {
	input := textinput.New()
	input.Placeholder = "What did you work on?"
	input.CharLimit = 500
	input.Width = 60
	input.Focus()

	d := &Dashboard{
		store:     store,
		requestor: requestor,
		copy:      clipboard.WriteAll,
		orgs:      []string{worklog.PlaceholderOrganization},
		issues:    []string{worklog.PlaceholderIssue},
		input:     input,
		logView:   viewport.New(80, 12),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.llmEnabled = requestor != nil && requestor.Enabled()
	d.reloadLog()
	return d
}

func (d *Dashboard) setIssueRefs(refs []string) {
	current := ""
	if d.issueIdx > 0 && d.issueIdx < len(d.issues) {
		current = d.issues[d.issueIdx]
	}
	d.issues = append([]string{worklog.PlaceholderIssue}, refs...)
	d.issueIdx = 0
	for i, ref := range d.issues {
		if ref == current && i > 0 {
			d.issueIdx = i
		}
	}
}

func (d *Dashboard) reloadLog() {
	d.day = d.store.Now()
	text, _ := d.store.DayLog(d.day)
	d.logView.SetContent(text)
	d.logView.GotoBottom()
}

// Init starts the cursor blinking.
func (d *Dashboard) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles one message.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Past midnight the log view switches to the new day's file.
	if !timecalc.SameDay(d.day, d.store.Now()) {
		d.reloadLog()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width, d.height = msg.Width, msg.Height
		d.input.Width = max(20, msg.Width-12)
		d.logView.Width = max(20, msg.Width-4)
		d.logView.Height = max(5, msg.Height/2-4)
		return d, nil

	case reportDoneMsg:
		return d, d.handleReport(msg.res)

	case githubDoneMsg:
		d.refreshing = false
		if msg.err != nil {
			d.log.Warn("github refresh: %v", msg.err)
			d.status = "GitHub refresh failed: " + msg.err.Error()
			return d, nil
		}
		var refs []string
		for _, it := range msg.res.Snapshot.Items() {
			refs = append(refs, it.IssueRef())
		}
		d.setIssueRefs(refs)
		d.status = fmt.Sprintf("GitHub refreshed: %d added, %d updated, %d removed.",
			msg.res.Added, msg.res.Updated, msg.res.Removed)
		return d, nil

	case spinner.TickMsg:
		if !d.busy && !d.refreshing {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		if cmd, handled := d.handleKey(msg); handled {
			return d, cmd
		}
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		if d.cancel != nil {
			d.cancel()
		}
		return tea.Quit, true
	case "enter":
		d.saveEntry()
		return nil, true
	case "tab":
		d.orgIdx = (d.orgIdx + 1) % len(d.orgs)
		return nil, true
	case "shift+tab":
		d.issueIdx = (d.issueIdx + 1) % len(d.issues)
		return nil, true
	case "ctrl+r":
		return d.requestReport(), true
	case "esc":
		if d.busy && d.cancel != nil {
			d.cancel()
			d.status = "Canceling report..."
		}
		return nil, true
	case "ctrl+y":
		text, ok := d.store.DayLog(d.store.Now())
		if !ok {
			d.status = "Nothing to copy yet."
			return nil, true
		}
		d.copyText(text, "Work log copied to clipboard.")
		return nil, true
	case "ctrl+l":
		if d.report == "" {
			d.status = "No report to copy yet."
			return nil, true
		}
		d.copyText(d.report, "Report copied to clipboard.")
		return nil, true
	case "ctrl+g":
		return d.refreshGitHub(), true
	case "pgup":
		d.logView.HalfViewUp()
		return nil, true
	case "pgdown":
		d.logView.HalfViewDown()
		return nil, true
	}
	return nil, false
}

func (d *Dashboard) saveEntry() {
	desc := strings.TrimSpace(d.input.Value())
	if desc == "" {
		d.status = msgEmptyDescription
		return
	}
	if !d.store.SaveEntry(d.orgs[d.orgIdx], d.issues[d.issueIdx], desc) {
		d.status = msgSaveFailed
		return
	}
	d.input.Reset()
	d.reloadLog()
	d.status = msgSaved
}

func (d *Dashboard) copyText(text, done string) {
	if err := d.copy(text); err != nil {
		d.log.Warn("clipboard: %v", err)
		d.status = "Clipboard unavailable: " + err.Error()
		return
	}
	d.status = done
}

// requestReport starts a background summarize call for today's log.
func (d *Dashboard) requestReport() tea.Cmd {
	if d.busy {
		d.status = msgReportBusy
		return nil
	}
	d.llmEnabled = d.requestor != nil && d.requestor.Enabled()
	if !d.llmEnabled {
		d.status = report.Result{Kind: report.Disabled}.Message()
		return nil
	}
	text, ok := d.store.DayLog(d.store.Now())
	if !ok {
		d.status = msgNoEntries
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.busy = true
	d.status = "Generating report..."
	requestor := d.requestor
	return tea.Batch(d.spinner.Tick, func() tea.Msg {
		return reportDoneMsg{res: requestor.Summarize(ctx, text)}
	})
}

func (d *Dashboard) handleReport(res report.Result) tea.Cmd {
	if d.cancel != nil {
		d.cancel()
	}
	d.cancel = nil
	d.busy = false
	d.report = res.Message()
	switch {
	case res.OK() && res.Chunked:
		d.status = "Report ready (log shortened to the most recent entries). Ctrl+L copies it."
	case res.OK():
		d.status = "Report ready. Ctrl+L copies it."
	default:
		d.status = "Report failed: " + res.Kind.String()
	}
	return nil
}

func (d *Dashboard) refreshGitHub() tea.Cmd {
	if d.refresh == nil {
		d.status = "GitHub refresh is not configured."
		return nil
	}
	if d.refreshing {
		return nil
	}
	d.refreshing = true
	d.status = "Refreshing GitHub snapshot..."
	fn := d.refresh
	return tea.Batch(d.spinner.Tick, func() tea.Msg {
		res, err := fn(context.Background())
		return githubDoneMsg{res: res, err: err}
	})
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B8DEF"))
	pickerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// View renders the dashboard.
func (d *Dashboard) View() string {
	now := d.store.Now()
	header := titleStyle.Render("STANDUP REPORTER · " + timecalc.DateLabel(now))

	pickers := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("Org "), pickerStyle.Render(d.orgs[d.orgIdx]),
		"  ",
		labelStyle.Render("Issue "), pickerStyle.Render(d.issues[d.issueIdx]),
	)

	sections := []string{
		header,
		"",
		pickers,
		d.input.View(),
		"",
		boxStyle.Render(labelStyle.Render("TODAY") + "\n" + d.logView.View()),
	}

	if d.llmEnabled {
		body := d.report
		if d.busy {
			body = d.spinner.View() + " waiting for the model (Esc cancels)"
		} else if body == "" {
			body = reportHint
		}
		sections = append(sections, boxStyle.Render(labelStyle.Render("REPORT")+"\n"+body))
	}

	status := d.status
	if d.refreshing {
		status = d.spinner.View() + " " + status
	}
	sections = append(sections, statusStyle.Render(status), helpStyle.Render(d.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (d *Dashboard) helpLine() string {
	keys := []string{"enter save", "tab org", "shift+tab issue", "ctrl+y copy log"}
	if d.llmEnabled {
		keys = append(keys, "ctrl+r report", "ctrl+l copy report")
	}
	if d.refresh != nil {
		keys = append(keys, "ctrl+g github")
	}
	keys = append(keys, "ctrl+c quit")
	return strings.Join(keys, " · ")
}

// Run starts the dashboard on the terminal and blocks until it exits.
func Run(d *Dashboard) error {
	_, err := tea.NewProgram(d, tea.WithAltScreen()).Run()
	return err
}
