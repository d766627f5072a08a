// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linker orchestrates the pipeline: extract candidates, enrich them
// through the configured agent strategy, resolve smart links, and rewrite
// the document. Data flows strictly forward through those four stages.
package linker

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/musiclink/internal/extract"
	"github.com/pdiddy/musiclink/internal/resolve"
	"github.com/pdiddy/musiclink/internal/rewrite"
	"github.com/pdiddy/musiclink/pkg/agent"
	"github.com/pdiddy/musiclink/pkg/types"
)

// Linker holds the configured pipeline stages.
type Linker struct {
	// AgentName selects the enrichment strategy. Empty means heuristic.
	AgentName   string
	AgentConfig types.AgentConfig

	ExtractConfig types.ExtractConfig

	Resolver *resolve.Resolver

	// Progress receives warnings and stage notes. Nil discards them.
	Progress io.Writer
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Output is the rewritten document.
	Output string

	// Entities holds the per-entity resolution outcomes, in document order.
	Entities []resolve.Outcome

	// AgentUsed names the strategy whose output fed resolution. After a
	// fallback this is "heuristic" even when another agent was configured.
	AgentUsed string

	// FallbackReason is non-empty when the configured agent failed and
	// the run proceeded with unenriched candidates.
	FallbackReason string

	Total        int
	Resolved     int
	Unresolved   int
	CacheHits    int
	AgentDropped int
}

// Process runs the pipeline over document. Only extraction errors and
// rewriter precondition violations are fatal; agent failures fall back to
// the unenriched candidates and per-entity resolution failures leave the
// affected spans untouched.
func (l *Linker) Process(ctx context.Context, document string) (Result, error) {
	w := l.Progress
	if w == nil {
		w = io.Discard
	}

	candidates, err := extract.Scan(document, l.ExtractConfig)
	if err != nil {
		return Result{}, fmt.Errorf("extracting candidates: %w", err)
	}
	if len(candidates) == 0 {
		return Result{Output: document, AgentUsed: "heuristic"}, nil
	}

	entities, agentUsed, fallbackReason := l.enrich(ctx, document, candidates, w)
	dropped := len(candidates) - len(entities)

	outcomes := resolve.ResolveAll(ctx, l.Resolver, entities, w)

	resolved := make([]types.MusicEntity, len(outcomes))
	res := Result{
		Entities:       outcomes,
		AgentUsed:      agentUsed,
		FallbackReason: fallbackReason,
		Total:          len(candidates),
		AgentDropped:   dropped,
	}
	for i, o := range outcomes {
		resolved[i] = o.Entity
		switch {
		case o.Entity.Resolved() && o.CacheHit:
			res.Resolved++
			res.CacheHits++
		case o.Entity.Resolved():
			res.Resolved++
		default:
			res.Unresolved++
		}
	}
	res.Unresolved += dropped

	output, err := rewrite.Apply(document, resolved)
	if err != nil {
		return Result{}, fmt.Errorf("rewriting document: %w", err)
	}
	res.Output = output
	return res, nil
}

// enrich applies the configured strategy exactly once. Any failure is
// converted into a fallback to the unenriched candidates with a warning
// naming the cause; the heuristic strategy itself cannot fail.
func (l *Linker) enrich(ctx context.Context, document string, candidates []types.MusicEntity, w io.Writer) (entities []types.MusicEntity, agentUsed, fallbackReason string) {
	name := l.AgentName
	if name == "" || name == "heuristic" {
		return candidates, "heuristic", ""
	}

	strategy, err := agent.New(name, l.AgentConfig)
	if err != nil {
		fmt.Fprintf(w, "warning: agent %s unavailable, continuing without enrichment: %v\n", name, err)
		return candidates, "heuristic", err.Error()
	}

	enriched, err := strategy.Enrich(ctx, document, candidates)
	if err != nil {
		fmt.Fprintf(w, "warning: agent %s failed, continuing without enrichment: %v\n", name, err)
		return candidates, "heuristic", err.Error()
	}

	l.noteAgentChanges(candidates, enriched, name, w)
	return enriched, name, ""
}

// noteAgentChanges reports dropped candidates and kind changes so agent
// edits stay observable in the progress output.
func (l *Linker) noteAgentChanges(candidates, enriched []types.MusicEntity, name string, w io.Writer) {
	byID := make(map[int]types.MusicEntity, len(enriched))
	for _, e := range enriched {
		byID[e.CandidateID] = e
	}
	for _, c := range candidates {
		e, ok := byID[c.CandidateID]
		if !ok {
			fmt.Fprintf(w, "warning: agent %s dropped candidate %d (%q)\n", name, c.CandidateID, c.Name)
			continue
		}
		if e.Kind != c.Kind {
			fmt.Fprintf(w, "agent %s changed kind of %q: %s -> %s\n", name, c.Name, c.Kind, e.Kind)
		}
	}
}
