// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "musiclink/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractConfig holds settings for the candidate extraction stage. The
// marker and wrapper command names are configurable because the LaTeX
// preamble defining them is author-controlled.
type ExtractConfig struct {
	// AlbumCommand is the marker command wrapping album titles (default "album").
	AlbumCommand string `json:"album_command" yaml:"album_command"`

	// TrackCommand is the marker command wrapping track titles (default "song").
	TrackCommand string `json:"track_command" yaml:"track_command"`

	// WrapperCommands are hyperlink commands whose arguments are skipped
	// during extraction to avoid double-linking (default ["href"]).
	WrapperCommands []string `json:"wrapper_commands" yaml:"wrapper_commands"`
}

// AgentConfig holds settings for the enrichment stage.
type AgentConfig struct {
	// Model is the model identifier passed to the llm CLI (ignored by
	// other strategies).
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// PromptPath overrides the embedded agent prompt document.
	PromptPath string `json:"prompt_path,omitempty" yaml:"prompt_path,omitempty"`

	// ToolsPath overrides the embedded tool schema document.
	ToolsPath string `json:"tools_path,omitempty" yaml:"tools_path,omitempty"`

	// Timeout bounds one agent subprocess invocation (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Env holds extra environment variables exported to the agent
	// subprocess (API keys loaded from .secrets/).
	Env map[string]string `json:"-" yaml:"-"`
}

// ResolveConfig holds settings for the entity resolution stage.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// Country is the storefront country code for platform search (default "us").
	Country string `json:"country" yaml:"country"`

	// MinScore is the minimum acceptable match score. Results scoring
	// below it leave the entity unresolved (default 0.5).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// Concurrency bounds parallel entity resolutions (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// Defaults fills zero fields with the documented default values.
func (c ResolveConfig) Defaults() ResolveConfig {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "musiclink/0.1"
	}
	if c.Country == "" {
		c.Country = "us"
	}
	if c.MinScore == 0 {
		c.MinScore = 0.5
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return c
}
