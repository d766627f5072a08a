// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agents provides the built-in enrichment strategies: the heuristic
// identity strategy and two external-process strategies backed by the llm
// and claude CLIs. All three register themselves with pkg/agent at init.
package agents

import (
	"context"

	"github.com/pdiddy/musiclink/pkg/agent"
	"github.com/pdiddy/musiclink/pkg/types"
)

// Strategy names.
const (
	NameHeuristic  = "heuristic"
	NameLLM        = "llm"
	NameClaudeCode = "claude-code"
)

func init() {
	agent.Register(NameHeuristic, func(types.AgentConfig) (agent.Strategy, error) {
		return heuristicStrategy{}, nil
	})
	agent.Register(NameLLM, newLLMStrategy)
	agent.Register(NameClaudeCode, newClaudeCodeStrategy)
}

// heuristicStrategy returns candidates unchanged. It cannot fail, which
// makes it the fallback target when another strategy does.
type heuristicStrategy struct{}

func (heuristicStrategy) Name() string { return NameHeuristic }

func (heuristicStrategy) Enrich(_ context.Context, _ string, candidates []types.MusicEntity) ([]types.MusicEntity, error) {
	return candidates, nil
}
