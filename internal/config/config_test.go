package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/standup-reporter/internal/config"
)

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".reporter", "context.yml")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LocalLLM.Enabled {
		t.Error("LLM should be disabled by default")
	}
	if cfg.LocalLLM.API != config.DefaultAPI {
		t.Errorf("API = %q, want %q", cfg.LocalLLM.API, config.DefaultAPI)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}

	// The template itself must parse back to the same defaults.
	again, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load template: %v", err)
	}
	if again.LocalLLM.ChunkSize != config.DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", again.LocalLLM.ChunkSize, config.DefaultChunkSize)
	}
	if again.LocalLLM.StartCommand != "ollama run llama3:8b" {
		t.Errorf("StartCommand = %q", again.LocalLLM.StartCommand)
	}
	if again.GitHub.Source != config.SourceGH {
		t.Errorf("Source = %q, want %q", again.GitHub.Source, config.SourceGH)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yml")
	data := "local_llm:\n  enabled: true\n  model: mistral\nworklog:\n  organizations: [Acme, \" \", Personal]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	llm := cfg.LocalLLM
	if !llm.Enabled {
		t.Error("Enabled = false, want true")
	}
	if llm.Model != "mistral" {
		t.Errorf("Model = %q, want mistral", llm.Model)
	}
	if llm.StartCommand != "ollama run mistral" {
		t.Errorf("StartCommand = %q, want %q", llm.StartCommand, "ollama run mistral")
	}
	if llm.Prompt != config.DefaultPrompt {
		t.Errorf("Prompt = %q, want default", llm.Prompt)
	}
	if llm.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", llm.Timeout())
	}
	if got := cfg.Worklog.Organizations; len(got) != 2 || got[0] != "Acme" || got[1] != "Personal" {
		t.Errorf("Organizations = %v, want [Acme Personal]", got)
	}
}

func TestLoadMalformedReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yml")
	if err := os.WriteFile(path, []byte("local_llm: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should name the file", err)
	}
	if cfg.LocalLLM.Model != config.DefaultModel {
		t.Errorf("defaults not returned on error: %+v", cfg.LocalLLM)
	}
}

func TestLoadRejectsUnknownGitHubSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yml")
	if err := os.WriteFile(path, []byte("github:\n  source: gitlab\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown source")
	}
}

func TestLoadInvalidSourceKeepsOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yml")
	data := "local_llm:\n  enabled: true\n  model: mistral\ngithub:\n  source: GitHub-cli\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "github.source") {
		t.Fatalf("err = %v, want a github.source error", err)
	}
	if !cfg.LocalLLM.Enabled {
		t.Error("Enabled = false, want the LLM setting kept")
	}
	if cfg.LocalLLM.Model != "mistral" {
		t.Errorf("Model = %q, want mistral", cfg.LocalLLM.Model)
	}
	if cfg.GitHub.Source != config.SourceGH {
		t.Errorf("Source = %q, want %q", cfg.GitHub.Source, config.SourceGH)
	}
}

func TestFileProviderRereadsEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yml")
	if err := os.WriteFile(path, []byte("local_llm:\n  enabled: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p := config.FileProvider{Path: path}

	first, err := p.Load()
	if err != nil {
		t.Fatal(err)
	}
	if first.LocalLLM.Enabled {
		t.Fatal("first load should be disabled")
	}

	if err := os.WriteFile(path, []byte("local_llm:\n  enabled: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	second, err := p.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !second.LocalLLM.Enabled {
		t.Error("second load should see the edited file")
	}
}

func TestStaticFillsDefaults(t *testing.T) {
	cfg, err := config.Static{LocalLLM: config.LLMConfig{Enabled: true, ChunkSize: 200}}.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LocalLLM.ChunkSize != 200 {
		t.Errorf("ChunkSize = %d, want 200", cfg.LocalLLM.ChunkSize)
	}
	if cfg.LocalLLM.API != config.DefaultAPI {
		t.Errorf("API = %q, want default", cfg.LocalLLM.API)
	}
}

func TestEnsureFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yml")
	if err := os.WriteFile(path, []byte("local_llm:\n  enabled: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := config.EnsureFile(path); err != nil {
		t.Fatalf("EnsureFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "local_llm:\n  enabled: true\n" {
		t.Errorf("EnsureFile overwrote existing config: %q", data)
	}
}
