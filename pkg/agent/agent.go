// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent defines the enrichment strategy contract and a registry of
// named strategy factories. Built-in strategies register themselves in their
// package init, the way database/sql drivers do; external backends import
// this package and call Register with their own factory.
package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pdiddy/musiclink/pkg/types"
)

// Strategy enriches extracted candidates with metadata (artist, year)
// inferred from the surrounding document text.
type Strategy interface {
	// Name returns the registered strategy name.
	Name() string

	// Enrich returns a refined copy of candidates. Implementations must
	// keep CandidateID, Start, End, and SourceText from the input;
	// candidates may be dropped but never invented. Any error means the
	// whole response is unusable and the caller falls back to the
	// unenriched candidates.
	Enrich(ctx context.Context, document string, candidates []types.MusicEntity) ([]types.MusicEntity, error)
}

// Factory constructs a strategy from configuration.
type Factory func(cfg types.AgentConfig) (Strategy, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a strategy factory available under name. It panics if name
// is already taken, which surfaces duplicate registrations at startup.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("agent: Register called twice for strategy %q", name))
	}
	registry[name] = factory
}

// New constructs the named strategy.
func New(name string, cfg types.AgentConfig) (Strategy, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown agent strategy %q (registered: %v)", name, Names())
	}
	s, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing agent %q: %w", name, err)
	}
	return s, nil
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
