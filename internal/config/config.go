package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for reporter, stored in ~/.reporter/context.yml.
type Config struct {
	LocalLLM LLMConfig     `yaml:"local_llm"`
	GitHub   GitHubConfig  `yaml:"github"`
	Worklog  WorklogConfig `yaml:"worklog"`
}

// LLMConfig holds the local language model settings used for standup reports.
type LLMConfig struct {
	// Enabled turns report generation on. Off unless explicitly set.
	Enabled bool `yaml:"enabled"`
	// API is the generation endpoint (Ollama's /api/generate by default).
	API string `yaml:"api"`
	// Model is the model name sent with every request.
	Model string `yaml:"model"`
	// Prompt is prepended to the work log.
	Prompt string `yaml:"prompt"`
	// ChunkSize bounds the prompt length, in characters.
	ChunkSize int `yaml:"chunk_size"`
	// StartCommand is shown to the user when the endpoint cannot be reached.
	StartCommand string `yaml:"start_command"`
	// TimeoutSeconds limits a single request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// GitHubConfig controls where the issue/PR snapshot comes from.
type GitHubConfig struct {
	// Source is "gh" (scrape `gh status`) or "api" (GitHub REST API).
	Source string `yaml:"source"`
	// APIURL is the REST base URL, for GitHub Enterprise installs.
	APIURL string `yaml:"api_url"`
	// TokenEnv names the environment variable holding the API token.
	TokenEnv string `yaml:"token_env"`
}

// WorklogConfig controls where entries are stored and which organizations
// the dashboard offers.
type WorklogConfig struct {
	DataDir       string   `yaml:"data_dir"`
	Organizations []string `yaml:"organizations"`
}

const (
	DefaultAPI            = "http://localhost:11434/api/generate"
	DefaultModel          = "llama3:8b"
	DefaultPrompt         = "Convert these work logs into a daily standup report. Only return the report:"
	DefaultChunkSize      = 4000
	DefaultTimeoutSeconds = 30

	SourceGH            = "gh"
	SourceAPI           = "api"
	DefaultGitHubAPIURL = "https://api.github.com"
	DefaultTokenEnv     = "GITHUB_TOKEN"
)

// Default returns a Config pre-filled with built-in defaults.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	llm := &c.LocalLLM
	if strings.TrimSpace(llm.API) == "" {
		llm.API = DefaultAPI
	}
	if strings.TrimSpace(llm.Model) == "" {
		llm.Model = DefaultModel
	}
	if strings.TrimSpace(llm.Prompt) == "" {
		llm.Prompt = DefaultPrompt
	}
	if llm.ChunkSize <= 0 {
		llm.ChunkSize = DefaultChunkSize
	}
	if strings.TrimSpace(llm.StartCommand) == "" {
		llm.StartCommand = "ollama run " + llm.Model
	}
	if llm.TimeoutSeconds <= 0 {
		llm.TimeoutSeconds = DefaultTimeoutSeconds
	}

	gh := &c.GitHub
	gh.Source = strings.ToLower(strings.TrimSpace(gh.Source))
	if gh.Source == "" {
		gh.Source = SourceGH
	}
	if strings.TrimSpace(gh.APIURL) == "" {
		gh.APIURL = DefaultGitHubAPIURL
	}
	gh.APIURL = strings.TrimRight(gh.APIURL, "/")
	if strings.TrimSpace(gh.TokenEnv) == "" {
		gh.TokenEnv = DefaultTokenEnv
	}

	var orgs []string
	for _, o := range c.Worklog.Organizations {
		if o = strings.TrimSpace(o); o != "" {
			orgs = append(orgs, o)
		}
	}
	c.Worklog.Organizations = orgs
}

func (c *Config) validate() error {
	if c.GitHub.Source != SourceGH && c.GitHub.Source != SourceAPI {
		return fmt.Errorf("github.source must be %q or %q, got %q", SourceGH, SourceAPI, c.GitHub.Source)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// configTemplate is the annotated config written on first run so users can
// discover the available options.
const configTemplate = `# reporter configuration – ~/.reporter/context.yml
#
# All settings are optional; the built-in defaults are shown below.

# ── Local LLM standup reports ───────────────────────────────────────────────
local_llm:
  # Report generation is off until you enable it and start the model.
  enabled: false
  # Ollama-compatible generate endpoint.
  api: http://localhost:11434/api/generate
  model: llama3:8b
  prompt: "Convert these work logs into a daily standup report. Only return the report:"
  # Maximum prompt length in characters. Longer logs keep only the most
  # recent entries.
  chunk_size: 4000
  # Shown when the endpoint cannot be reached.
  start_command: ollama run llama3:8b
  timeout_seconds: 30

# ── GitHub issues / PRs / review requests ───────────────────────────────────
github:
  # "gh"  – scrape ` + "`gh status`" + ` (requires the GitHub CLI, already logged in)
  # "api" – call the REST API with a token read from token_env
  source: gh
  api_url: https://api.github.com
  token_env: GITHUB_TOKEN

# ── Work log ────────────────────────────────────────────────────────────────
worklog:
  # Directory for worklog_YYYY-MM-DD.txt files. Defaults to ~/.reporter/user_data.
  data_dir: ""
  # Organizations offered by the dashboard picker.
  organizations: []
`

// DefaultPath returns the path to ~/.reporter/context.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".reporter", "context.yml"), nil
}

// Load reads the config at path, creating it with annotated defaults on first
// run. On any error the returned Config is still usable: unreadable files
// yield the defaults and an invalid setting falls back on its own.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if writeErr := writeDefault(path); writeErr != nil {
			return Default(), fmt.Errorf("could not create config file %s: %w", path, writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields so a partially written file still yields a
	// usable Config.
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		// Only the offending setting falls back; the rest of the file still applies.
		cfg.GitHub.Source = SourceGH
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// EnsureFile writes the annotated template if path does not exist yet.
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config file %s: %w", path, err)
	}
	return writeDefault(path)
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Provider yields the current configuration. Consumers call Load on every
// operation instead of caching the result.
type Provider interface {
	Load() (Config, error)
}

// FileProvider re-reads a config file on every Load.
type FileProvider struct {
	Path string
}

func (p FileProvider) Load() (Config, error) {
	return Load(p.Path)
}

// Static serves a fixed Config. Zero fields are filled with defaults.
type Static Config

func (s Static) Load() (Config, error) {
	cfg := Config(s)
	cfg.applyDefaults()
	return cfg, nil
}
