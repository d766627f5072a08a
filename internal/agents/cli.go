// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/musiclink/pkg/agent"
	"github.com/pdiddy/musiclink/pkg/types"
)

const (
	defaultLLMModel     = "gpt-4o-mini"
	defaultAgentTimeout = 120 * time.Second

	binLLM    = "llm"
	binClaude = "claude"
)

// cliStrategy runs an external CLI that takes a system prompt and a JSON
// payload and prints a JSON entities response. The llm and claude-code
// strategies differ only in binary name and argument layout.
type cliStrategy struct {
	name       string
	binary     string
	buildArgs  func(systemPrompt, payload string) []string
	system     string
	promptName string
	timeout    time.Duration
	env        map[string]string
	exec       executor
}

func newLLMStrategy(cfg types.AgentConfig) (agent.Strategy, error) {
	model := cfg.Model
	if model == "" {
		model = defaultLLMModel
	}
	return newCLIStrategy(cfg, NameLLM, binLLM, func(system, payload string) []string {
		return []string{"-m", model, "-s", system, payload}
	})
}

func newClaudeCodeStrategy(cfg types.AgentConfig) (agent.Strategy, error) {
	return newCLIStrategy(cfg, NameClaudeCode, binClaude, func(system, payload string) []string {
		return []string{"--print", "-p", system, payload}
	})
}

func newCLIStrategy(cfg types.AgentConfig, name, binary string, buildArgs func(string, string) []string) (agent.Strategy, error) {
	prompt, promptName, err := loadPrompt(cfg.PromptPath)
	if err != nil {
		return nil, err
	}
	tools, err := loadTools(cfg.ToolsPath)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultAgentTimeout
	}

	return &cliStrategy{
		name:       name,
		binary:     binary,
		buildArgs:  buildArgs,
		system:     systemPrompt(prompt, tools),
		promptName: promptName,
		timeout:    timeout,
		env:        cfg.Env,
		exec:       defaultExec,
	}, nil
}

// systemPrompt appends the tool schema to the prompt document so the agent
// knows how its output feeds the resolvers.
func systemPrompt(prompt, tools string) string {
	if tools == "" {
		return prompt
	}
	return prompt + "\n\nTool schema (YAML):\n" + tools
}

func (s *cliStrategy) Name() string { return s.name }

// Enrich serializes the request, runs the CLI once, and merges the
// validated response back onto the extractor candidates. Every failure
// path returns an error; the orchestrator converts it into a fallback to
// the unenriched candidates.
func (s *cliStrategy) Enrich(ctx context.Context, document string, candidates []types.MusicEntity) ([]types.MusicEntity, error) {
	if _, err := s.exec.LookPath(s.binary); err != nil {
		return nil, fmt.Errorf("%s CLI is not available on PATH", s.binary)
	}

	req := BuildRequest(document, candidates, s.promptName)
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("serializing agent request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	output, err := s.exec.Run(ctx, s.binary, s.buildArgs(s.system, string(payload)), s.env)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return nil, fmt.Errorf("%s produced no output", s.binary)
	}

	entities, err := parseResponse(output)
	if err != nil {
		return nil, err
	}
	return merge(candidates, entities)
}
