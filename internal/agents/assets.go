// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Fixed text assets embedded in the binary. The prompt and tool schema are
// overridable via AgentConfig paths; the response schema is not.
var (
	//go:embed assets/agent_prompt.md
	defaultPrompt string

	//go:embed assets/music_resolvers.yaml
	defaultTools string

	//go:embed assets/entities_schema.json
	entitiesSchemaJSON string
)

// defaultPromptName is reported as instruction_version in agent payloads.
const defaultPromptName = "agent_prompt.md"

// loadPrompt returns the prompt document and its name, honoring an override
// path from configuration.
func loadPrompt(overridePath string) (prompt, name string, err error) {
	if overridePath == "" {
		return defaultPrompt, defaultPromptName, nil
	}
	data, err := os.ReadFile(overridePath)
	if err != nil {
		return "", "", fmt.Errorf("reading agent prompt: %w", err)
	}
	return string(data), filepath.Base(overridePath), nil
}

// loadTools returns the tool-schema document, honoring an override path.
// The document is YAML-parsed so a corrupt override fails strategy
// construction instead of silently confusing the agent.
func loadTools(overridePath string) (string, error) {
	doc := defaultTools
	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return "", fmt.Errorf("reading tool schema: %w", err)
		}
		doc = string(data)
	}

	var probe any
	if err := yaml.Unmarshal([]byte(doc), &probe); err != nil {
		return "", fmt.Errorf("parsing tool schema: %w", err)
	}
	return doc, nil
}
