package report_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tiliavir/standup-reporter/internal/config"
	"github.com/Tiliavir/standup-reporter/internal/model"
	"github.com/Tiliavir/standup-reporter/internal/report"
)

const sampleLog = `2025-01-24 09:00 [TestOrg] [123# fix bug] - Fixed authentication issue
2025-01-24 10:30 [TestOrg] [456# new feature] - Implemented user dashboard
2025-01-24 14:00 [Personal] - Code review and documentation`

func enabled(api string) config.Static {
	return config.Static{LocalLLM: config.LLMConfig{Enabled: true, API: api}}
}

// llmServer records the last request body and replies with reply.
func llmServer(t *testing.T, status int, reply string) (*httptest.Server, *model.ReportRequest, *int32) {
	t.Helper()
	var got model.ReportRequest
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &hits
}

func TestSummarizeSuccess(t *testing.T) {
	srv, got, _ := llmServer(t, http.StatusOK, `{"response":"Yesterday I fixed auth."}`)

	res := report.NewRequestor(enabled(srv.URL)).Summarize(context.Background(), sampleLog)
	if res.Kind != report.Success {
		t.Fatalf("Kind = %s, want success (%s)", res.Kind, res.Message())
	}
	if res.Message() != "Yesterday I fixed auth." {
		t.Errorf("Message = %q", res.Message())
	}
	if got.Model != config.DefaultModel {
		t.Errorf("model = %q, want %q", got.Model, config.DefaultModel)
	}
	if got.Stream {
		t.Error("stream = true, want false")
	}
	if !strings.Contains(got.Prompt, sampleLog) {
		t.Error("prompt does not contain the full work log")
	}
	if !strings.HasPrefix(got.Prompt, config.DefaultPrompt+"\n\nWork logs:\n") {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if res.Chunked {
		t.Error("Chunked = true for a short log")
	}
}

func TestSummarizeMissingResponseField(t *testing.T) {
	srv, _, _ := llmServer(t, http.StatusOK, `{"done":true}`)
	res := report.NewRequestor(enabled(srv.URL)).Summarize(context.Background(), sampleLog)
	if res.Kind != report.Success || res.Text != report.NoResponseText {
		t.Errorf("result = %+v, want success with %q", res, report.NoResponseText)
	}
}

func TestSummarizeDisabledMakesNoRequest(t *testing.T) {
	srv, _, hits := llmServer(t, http.StatusOK, `{"response":"x"}`)
	p := config.Static{LocalLLM: config.LLMConfig{Enabled: false, API: srv.URL}}
	r := report.NewRequestor(p)

	for _, in := range []string{"", sampleLog} {
		res := r.Summarize(context.Background(), in)
		if res.Kind != report.Disabled {
			t.Errorf("Kind = %s, want disabled", res.Kind)
		}
		if !strings.Contains(res.Message(), "disabled") {
			t.Errorf("Message = %q", res.Message())
		}
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Errorf("endpoint hit %d times while disabled", n)
	}
	if r.Enabled() {
		t.Error("Enabled() = true")
	}
}

func TestSummarizeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := report.NewRequestor(enabled(url)).Summarize(context.Background(), sampleLog)
	if res.Kind != report.ConnectionFailed {
		t.Fatalf("Kind = %s, want connection-failed (%s)", res.Kind, res.Detail)
	}
	msg := res.Message()
	if !strings.Contains(msg, "Cannot connect to LLM API") {
		t.Errorf("Message = %q, want connection failure phrase", msg)
	}
	if !strings.Contains(msg, "ollama run llama3:8b") {
		t.Errorf("Message = %q, want remediation command", msg)
	}
}

func TestSummarizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := report.NewRequestor(enabled(srv.URL)).Summarize(ctx, sampleLog)
	if res.Kind != report.TimedOut {
		t.Fatalf("Kind = %s, want timed-out (%s)", res.Kind, res.Detail)
	}
	if !strings.Contains(res.Message(), "timed out") {
		t.Errorf("Message = %q", res.Message())
	}
}

func TestSummarizeClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	res := report.NewRequestor(enabled(srv.URL), report.WithHTTPClient(client)).
		Summarize(context.Background(), sampleLog)
	if res.Kind != report.TimedOut {
		t.Fatalf("Kind = %s, want timed-out (%s)", res.Kind, res.Detail)
	}
}

func TestSummarizeCanceled(t *testing.T) {
	srv, _, _ := llmServer(t, http.StatusOK, `{"response":"x"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := report.NewRequestor(enabled(srv.URL)).Summarize(ctx, sampleLog)
	if res.Kind != report.Canceled {
		t.Fatalf("Kind = %s, want canceled", res.Kind)
	}
}

func TestSummarizeHTTPError(t *testing.T) {
	srv, _, _ := llmServer(t, http.StatusInternalServerError, `model "llama3:8b" not found`)
	res := report.NewRequestor(enabled(srv.URL)).Summarize(context.Background(), sampleLog)
	if res.Kind != report.TransportError {
		t.Fatalf("Kind = %s, want transport-error", res.Kind)
	}
	msg := res.Message()
	if !strings.Contains(msg, "LLM API error") || !strings.Contains(msg, "500") {
		t.Errorf("Message = %q", msg)
	}
	if !strings.Contains(msg, "not found") {
		t.Errorf("Message = %q, want the response body", msg)
	}
}

func TestSummarizeGenericTransportError(t *testing.T) {
	res := report.NewRequestor(enabled("ftp://localhost/api/generate")).
		Summarize(context.Background(), sampleLog)
	if res.Kind != report.TransportError {
		t.Fatalf("Kind = %s, want transport-error", res.Kind)
	}
	if !strings.Contains(res.Message(), "unsupported protocol scheme") {
		t.Errorf("Message = %q, want the transport error text", res.Message())
	}
}

func TestSummarizeUndecodableBody(t *testing.T) {
	srv, _, _ := llmServer(t, http.StatusOK, `<html>not json</html>`)
	res := report.NewRequestor(enabled(srv.URL)).Summarize(context.Background(), sampleLog)
	if res.Kind != report.Unexpected {
		t.Fatalf("Kind = %s, want unexpected", res.Kind)
	}
	if !strings.HasPrefix(res.Message(), "❌ Unexpected error:") {
		t.Errorf("Message = %q", res.Message())
	}
}

func TestSummarizeSendsChunkedPrompt(t *testing.T) {
	srv, got, _ := llmServer(t, http.StatusOK, `{"response":"ok"}`)
	p := config.Static{LocalLLM: config.LLMConfig{Enabled: true, API: srv.URL, ChunkSize: 600, Prompt: "Report:"}}

	log := strings.Repeat(sampleLog+"\n", 30) + "LAST LINE"
	res := report.NewRequestor(p).Summarize(context.Background(), log)
	if !res.OK() {
		t.Fatalf("Summarize: %s", res.Message())
	}
	if !res.Chunked {
		t.Error("Chunked = false")
	}
	if n := len([]rune(got.Prompt)); n > 600 {
		t.Errorf("sent prompt length = %d, want <= 600", n)
	}
	if !strings.Contains(got.Prompt, "most recent") || !strings.HasSuffix(got.Prompt, "LAST LINE") {
		t.Errorf("sent prompt = %q", got.Prompt)
	}
}

type panicProvider struct{}

func (panicProvider) Load() (config.Config, error) { panic("config exploded") }

func TestSummarizeRecoversPanics(t *testing.T) {
	res := report.NewRequestor(panicProvider{}).Summarize(context.Background(), sampleLog)
	if res.Kind != report.Unexpected || !strings.Contains(res.Message(), "config exploded") {
		t.Errorf("result = %+v", res)
	}
}

func TestKindString(t *testing.T) {
	if report.ConnectionFailed.String() != "connection-failed" {
		t.Errorf("String = %q", report.ConnectionFailed.String())
	}
}

func TestSummarizeHTTPErrorBodyIsShortened(t *testing.T) {
	srv, _, _ := llmServer(t, http.StatusBadGateway, strings.Repeat("<html>upstream down</html>", 2000))
	res := report.NewRequestor(enabled(srv.URL)).Summarize(context.Background(), sampleLog)
	if res.Kind != report.TransportError {
		t.Fatalf("Kind = %s, want transport-error", res.Kind)
	}
	if n := len([]rune(res.Message())); n > 400 {
		t.Errorf("Message length = %d, want a short message", n)
	}
	if !strings.Contains(res.Message(), "502") || !strings.HasSuffix(res.Message(), "...") {
		t.Errorf("Message = %q", res.Message())
	}
}

func TestSummarizeIgnoresUnrelatedConfigError(t *testing.T) {
	srv, _, hits := llmServer(t, http.StatusOK, `{"response":"ok"}`)
	path := filepath.Join(t.TempDir(), "context.yml")
	data := "local_llm:\n  enabled: true\n  api: " + srv.URL + "\ngithub:\n  source: GitHub-cli\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	res := report.NewRequestor(config.FileProvider{Path: path}).Summarize(context.Background(), sampleLog)
	if res.Kind != report.Success {
		t.Fatalf("Kind = %s, want success (%s)", res.Kind, res.Message())
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("endpoint hit %d times, want 1", atomic.LoadInt32(hits))
	}
}
