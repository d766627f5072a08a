// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agents

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/musiclink/pkg/agent"
	"github.com/pdiddy/musiclink/pkg/types"
)

// fakeExec scripts subprocess behavior for strategy tests.
type fakeExec struct {
	missing  bool
	output   string
	runErr   error
	lastName string
	lastArgs []string
	lastEnv  map[string]string
}

func (f *fakeExec) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExec) Run(_ context.Context, name string, args []string, env map[string]string) (string, error) {
	f.lastName = name
	f.lastArgs = args
	f.lastEnv = env
	return f.output, f.runErr
}

func newTestStrategy(t *testing.T, name string, exec *fakeExec) *cliStrategy {
	t.Helper()
	s, err := agent.New(name, types.AgentConfig{})
	require.NoError(t, err)
	cli, ok := s.(*cliStrategy)
	require.True(t, ok, "strategy %s is not CLI-backed", name)
	cli.exec = exec
	return cli
}

func TestLLMStrategyEnrich(t *testing.T) {
	exec := &fakeExec{output: `{"entities": [
		{"candidate_id": 0, "name": "Aquemini", "artist": "OutKast", "type": "album", "year": 1998}
	]}`}
	s := newTestStrategy(t, NameLLM, exec)

	enriched, err := s.Enrich(context.Background(), "doc", testCandidates())
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, "OutKast", enriched[0].Artist)

	assert.Equal(t, binLLM, exec.lastName)
	require.GreaterOrEqual(t, len(exec.lastArgs), 5)
	assert.Equal(t, "-m", exec.lastArgs[0])
	assert.Equal(t, defaultLLMModel, exec.lastArgs[1])
	assert.Equal(t, "-s", exec.lastArgs[2])
	assert.Contains(t, exec.lastArgs[3], "Tool schema (YAML):")

	// The final argument is the JSON request payload.
	var req Request
	require.NoError(t, json.Unmarshal([]byte(exec.lastArgs[len(exec.lastArgs)-1]), &req))
	assert.Equal(t, "doc", req.DocumentText)
	assert.Len(t, req.Candidates, 2)
	assert.Equal(t, defaultPromptName, req.InstructionVersion)
}

func TestClaudeCodeStrategyArgs(t *testing.T) {
	exec := &fakeExec{output: `{"entities": [{"candidate_id": 0, "name": "X", "type": "album"}]}`}
	s := newTestStrategy(t, NameClaudeCode, exec)

	_, err := s.Enrich(context.Background(), "doc", testCandidates())
	require.NoError(t, err)
	assert.Equal(t, binClaude, exec.lastName)
	require.Len(t, exec.lastArgs, 4)
	assert.Equal(t, "--print", exec.lastArgs[0])
	assert.Equal(t, "-p", exec.lastArgs[1])
}

func TestCLIStrategyFailures(t *testing.T) {
	tests := []struct {
		name string
		exec *fakeExec
	}{
		{"binary missing", &fakeExec{missing: true}},
		{"process error", &fakeExec{runErr: errors.New("llm failed: exit status 1")}},
		{"empty output", &fakeExec{output: ""}},
		{"malformed JSON", &fakeExec{output: "not json at all"}},
		{"schema violation", &fakeExec{output: `{"entities": [{"name": "no id", "type": "album"}]}`}},
		{"unknown candidate id", &fakeExec{output: `{"entities": [{"candidate_id": 42, "name": "X", "type": "album"}]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStrategy(t, NameLLM, tt.exec)
			_, err := s.Enrich(context.Background(), "doc", testCandidates())
			assert.Error(t, err)
		})
	}
}

func TestCLIStrategyPassesEnv(t *testing.T) {
	exec := &fakeExec{output: `{"entities": [{"candidate_id": 0, "name": "X", "type": "album"}]}`}
	s, err := agent.New(NameLLM, types.AgentConfig{
		Env: map[string]string{"OPENAI_API_KEY": "sk-test"},
	})
	require.NoError(t, err)
	s.(*cliStrategy).exec = exec

	_, err = s.Enrich(context.Background(), "doc", testCandidates())
	require.NoError(t, err)
	assert.Equal(t, "sk-test", exec.lastEnv["OPENAI_API_KEY"])
}

func TestHeuristicStrategy(t *testing.T) {
	s, err := agent.New(NameHeuristic, types.AgentConfig{})
	require.NoError(t, err)

	in := testCandidates()
	out, err := s.Enrich(context.Background(), "doc", in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRegisteredStrategies(t *testing.T) {
	names := agent.Names()
	for _, want := range []string{NameHeuristic, NameLLM, NameClaudeCode} {
		assert.Contains(t, names, want)
	}
}

func TestLLMStrategyModelOverride(t *testing.T) {
	exec := &fakeExec{output: `{"entities": [{"candidate_id": 0, "name": "X", "type": "album"}]}`}
	s, err := agent.New(NameLLM, types.AgentConfig{Model: "gpt-5"})
	require.NoError(t, err)
	s.(*cliStrategy).exec = exec

	_, err = s.Enrich(context.Background(), "doc", testCandidates())
	require.NoError(t, err)
	assert.Equal(t, "gpt-5", exec.lastArgs[1])
}

func TestLoadToolsRejectsCorruptOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tools: [unclosed"), 0o644))

	_, err := agent.New(NameLLM, types.AgentConfig{ToolsPath: path})
	assert.Error(t, err)
}
