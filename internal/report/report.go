package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/Tiliavir/standup-reporter/internal/config"
	"github.com/Tiliavir/standup-reporter/internal/diag"
	"github.com/Tiliavir/standup-reporter/internal/model"
)

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 4 << 20

// maxDetailRunes caps how much of an error body ends up in a message.
const maxDetailRunes = 300

// Requestor turns a work log into a standup report via a local generation
// endpoint.
type Requestor struct {
	provider   config.Provider
	httpClient *http.Client
	log        *diag.Logger
}

// Option customizes a Requestor.
type Option func(*Requestor)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Requestor) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *diag.Logger) Option {
	return func(r *Requestor) { r.log = l }
}

// NewRequestor returns a Requestor that reads its settings from p on every
// call.
func NewRequestor(p config.Provider, opts ...Option) *Requestor {
	r := &Requestor{provider: p, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether report generation is currently switched on.
func (r *Requestor) Enabled() bool {
	cfg, err := r.provider.Load()
	if err != nil {
		r.log.Warn("loading config: %v", err)
	}
	return cfg.LocalLLM.Enabled
}

// Summarize sends the work log to the configured endpoint and returns the
// outcome. It makes at most one request and never panics.
func (r *Requestor) Summarize(ctx context.Context, worklog string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("report: recovered from panic: %v", p)
			res = Result{Kind: Unexpected, Detail: fmt.Sprint(p)}
		}
	}()

	cfg, err := r.provider.Load()
	if err != nil {
		r.log.Warn("loading config: %v", err)
	}
	llm := cfg.LocalLLM
	if !llm.Enabled {
		return Result{Kind: Disabled}
	}

	prompt, chunked := BuildPrompt(llm.Prompt, worklog, llm.ChunkSize)
	r.log.Info("report: sending %d characters to %s (model %s, chunked %v)",
		runeLen(prompt), llm.API, llm.Model, chunked)

	res = r.send(ctx, llm, prompt)
	res.Chunked = chunked
	res.StartCommand = llm.StartCommand
	if !res.OK() {
		r.log.Warn("report: %s: %s", res.Kind, res.Detail)
	}
	return res
}

func (r *Requestor) send(ctx context.Context, llm config.LLMConfig, prompt string) Result {
	body, err := json.Marshal(model.ReportRequest{Model: llm.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return Result{Kind: Unexpected, Detail: fmt.Sprintf("encoding request: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, llm.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, llm.API, bytes.NewReader(body))
	if err != nil {
		return Result{Kind: TransportError, Detail: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Result{Kind: classify(err), Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{Kind: classify(err), Detail: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Kind: TransportError, Detail: fmt.Sprintf("%s: %s", resp.Status, clip(strings.TrimSpace(string(data)), maxDetailRunes))}
	}

	var out model.ReportResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{Kind: Unexpected, Detail: fmt.Sprintf("decoding response: %v", err)}
	}
	if out.Response == nil {
		return Result{Kind: Success, Text: NoResponseText}
	}
	return Result{Kind: Success, Text: *out.Response}
}

// classify maps a transport error onto a result kind.
func classify(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimedOut
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ConnectionFailed
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ConnectionFailed
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectionFailed
	}
	return TransportError
}

// clip shortens s to at most n characters, marking the cut.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
