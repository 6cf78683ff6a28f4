// Package config builds the run configuration from the CI environment and an optional settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/shipitai/prreview/github"
	"github.com/shipitai/prreview/i18n"
	"github.com/shipitai/prreview/llm"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvRepository      = "GITHUB_REPOSITORY"
	EnvRef             = "GITHUB_REF"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvGitHubAPIURL    = "GITHUB_API_URL"
	EnvAppID           = "GITHUB_APP_ID"
	EnvInstallationID  = "GITHUB_APP_INSTALLATION_ID"
	EnvPrivateKeyPath  = "GITHUB_PRIVATE_KEY_PATH"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvSettingsPath    = "PRREVIEW_CONFIG"
	EnvProvider        = "PRREVIEW_PROVIDER"
	EnvModel           = "PRREVIEW_MODEL"
	EnvLanguage        = "PRREVIEW_LANGUAGE"
)

// ConfigParseError indicates a settings file exists but contains invalid content.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("invalid config at %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error {
	return e.Err
}

// Settings holds the optional tuning read from the YAML settings file.
type Settings struct {
	// Provider selects the completion backend: "openai", "anthropic" or "gemini".
	Provider string `yaml:"provider"`
	// Model overrides the provider's default model.
	Model string `yaml:"model"`
	// Language selects the prompt language ("ko" or "en").
	Language string `yaml:"language"`
	// GitHubAPIURL points at a GitHub Enterprise REST endpoint.
	GitHubAPIURL     string `yaml:"github_api_url"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`
	GeminiBaseURL    string `yaml:"gemini_base_url"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() *Settings {
	return &Settings{
		Provider: llm.ProviderOpenAI,
		Language: i18n.DefaultLanguage,
	}
}

// ParseSettings parses settings from YAML content.
func ParseSettings(content []byte) (*Settings, error) {
	settings := DefaultSettings()
	if err := yaml.Unmarshal(content, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate validates the settings, filling in defaults for empty fields.
func (s *Settings) Validate() error {
	if s.Provider == "" {
		s.Provider = llm.ProviderOpenAI
	}
	if !llm.IsValidProvider(s.Provider) {
		return fmt.Errorf("invalid provider value: %s (must be 'openai', 'anthropic' or 'gemini')", s.Provider)
	}

	if s.Language == "" {
		s.Language = i18n.DefaultLanguage
	}
	langs, err := i18n.SupportedLanguages()
	if err != nil {
		return fmt.Errorf("failed to load languages: %w", err)
	}
	for _, lang := range langs {
		if lang == s.Language {
			return nil
		}
	}
	return fmt.Errorf("invalid language value: %s", s.Language)
}

// LoadSettings reads settings from path. An empty path returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	settings, err := ParseSettings(content)
	if err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	return settings, nil
}

// GitHubApp holds GitHub App installation credentials.
type GitHubApp struct {
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// Config is the complete, validated configuration of one run.
type Config struct {
	PullRequest  github.PullRequestRef
	GitHubToken  string
	GitHubApp    *GitHubApp // set only when no token is given
	GitHubAPIURL string
	LLM          llm.Settings
	Language     string
}

// FromEnv builds the run configuration. getenv is usually os.Getenv.
// The ref is resolved before anything else so a non-PR build fails without touching the settings or the network.
// settingsPath falls back to PRREVIEW_CONFIG when empty.
func FromEnv(getenv func(string) string, settingsPath string) (*Config, error) {
	ref, err := github.ResolvePullRequest(getenv(EnvRepository), getenv(EnvRef))
	if err != nil {
		return nil, err
	}

	if settingsPath == "" {
		settingsPath = getenv(EnvSettingsPath)
	}
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	if v := getenv(EnvProvider); v != "" {
		settings.Provider = v
	}
	if v := getenv(EnvModel); v != "" {
		settings.Model = v
	}
	if v := getenv(EnvLanguage); v != "" {
		settings.Language = v
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		PullRequest:  ref,
		GitHubToken:  getenv(EnvGitHubToken),
		GitHubAPIURL: settings.GitHubAPIURL,
		Language:     settings.Language,
		LLM: llm.Settings{
			Provider: settings.Provider,
			Model:    settings.Model,
		},
	}
	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = getenv(EnvGitHubAPIURL)
	}

	switch settings.Provider {
	case llm.ProviderOpenAI:
		cfg.LLM.APIKey = getenv(EnvOpenAIAPIKey)
		cfg.LLM.BaseURL = settings.OpenAIBaseURL
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("%s is required", EnvOpenAIAPIKey)
		}
	case llm.ProviderAnthropic:
		cfg.LLM.APIKey = getenv(EnvAnthropicAPIKey)
		cfg.LLM.BaseURL = settings.AnthropicBaseURL
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("%s is required", EnvAnthropicAPIKey)
		}
	case llm.ProviderGemini:
		cfg.LLM.APIKey = getenv(EnvGeminiAPIKey)
		cfg.LLM.BaseURL = settings.GeminiBaseURL
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("%s is required", EnvGeminiAPIKey)
		}
	}

	if cfg.GitHubToken == "" {
		app, err := appFromEnv(getenv)
		if err != nil {
			return nil, err
		}
		cfg.GitHubApp = app
	}

	return cfg, nil
}

func appFromEnv(getenv func(string) string) (*GitHubApp, error) {
	appIDStr := getenv(EnvAppID)
	if appIDStr == "" {
		return nil, errors.New(EnvGitHubToken + " is required")
	}

	appID, err := strconv.ParseInt(appIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvAppID, err)
	}

	installationID, err := strconv.ParseInt(getenv(EnvInstallationID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvInstallationID, err)
	}

	keyPath := getenv(EnvPrivateKeyPath)
	if keyPath == "" {
		return nil, fmt.Errorf("%s is required", EnvPrivateKeyPath)
	}

	return &GitHubApp{
		AppID:          appID,
		InstallationID: installationID,
		PrivateKeyPath: keyPath,
	}, nil
}
