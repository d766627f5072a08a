// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve maps enriched music entities to smart-link URLs in two
// stages: a platform search that scores and selects a canonical platform
// URL, and a redirector hop that converts it into a platform-agnostic
// smart link. One entity's failure never aborts the run; the entity is
// left unresolved and the pipeline continues.
package resolve

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/musiclink/internal/httputil"
	"github.com/pdiddy/musiclink/pkg/types"
)

// Query holds the platform search parameters for one entity.
type Query struct {
	Name    string
	Artist  string
	Kind    types.Kind
	Year    int
	Country string
}

// PlatformResult is one candidate match returned by a platform backend.
type PlatformResult struct {
	Title  string
	Artist string
	Year   int
	URL    string
}

// SearchPage holds a backend's candidate matches plus the raw payload,
// retained for diagnostics.
type SearchPage struct {
	Results []PlatformResult
	Raw     []byte
}

// PlatformBackend searches a single streaming platform. Implemented by the
// iTunes Search API backend; the interface exists so the platform can be
// swapped per the Strategy pattern.
type PlatformBackend interface {
	Name() string
	Search(ctx context.Context, q Query) (*SearchPage, error)
}

// SmartLinkBackend converts a platform URL into a smart link.
type SmartLinkBackend interface {
	Resolve(ctx context.Context, platformURL string) (types.SmartLink, error)
}

// CacheKey identifies a resolution in the link cache.
type CacheKey struct {
	Kind    types.Kind
	Name    string
	Artist  string
	Year    int
	Country string
}

// CachedLink is a previously successful resolution.
type CachedLink struct {
	Platform     string
	PlatformURL  string
	SmartLinkURL string
	Confidence   float64
}

// Cache stores successful resolutions across runs. A nil Cache on the
// Resolver means "always miss".
type Cache interface {
	Get(ctx context.Context, key CacheKey) (*CachedLink, error)
	Put(ctx context.Context, key CacheKey, link CachedLink) error
}

// Stage names used in warnings and run reports.
const (
	StageSearch    = "search"
	StageSmartLink = "smartlink"
)

// Outcome records how one entity fared through resolution.
type Outcome struct {
	// Entity is the input entity, annotated with URLs on success.
	Entity types.MusicEntity

	// Resolution is the platform-search result, nil when that stage
	// failed or was skipped by a cache hit.
	Resolution *types.Resolution

	// CacheHit reports that both stages were skipped.
	CacheHit bool

	// Stage and Err identify the failing stage when Err is non-nil.
	Stage string
	Err   error
}

// Resolver runs both stages for each entity.
type Resolver struct {
	Platform  PlatformBackend
	SmartLink SmartLinkBackend
	Cache     Cache
	Config    types.ResolveConfig
}

// ResolveAll resolves every entity and returns outcomes aligned with the
// input order. Entities are resolved with at most Config.Concurrency in
// flight; completion order never affects output order. One warning per
// failed entity is written to w, attributing the failing stage.
func ResolveAll(ctx context.Context, r *Resolver, entities []types.MusicEntity, w io.Writer) []Outcome {
	cfg := r.Config.Defaults()
	outcomes := make([]Outcome, len(entities))

	sem := make(chan struct{}, cfg.Concurrency)
	var wg sync.WaitGroup
	for i, e := range entities {
		wg.Add(1)
		go func(i int, e types.MusicEntity) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = r.resolveOne(ctx, e, cfg)
		}(i, e)
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "warning: unresolved %s %q (%s stage): %v\n",
				o.Entity.Kind, o.Entity.Name, o.Stage, o.Err)
		}
	}
	return outcomes
}

// ResolveEntity resolves a single entity. Used by the one-shot CLI
// debugging command; ResolveAll is the pipeline entry point.
func (r *Resolver) ResolveEntity(ctx context.Context, e types.MusicEntity) Outcome {
	return r.resolveOne(ctx, e, r.Config.Defaults())
}

// resolveOne runs cache lookup, platform search, and smart-link conversion
// for a single entity. The returned outcome carries the annotated entity on
// success or the original entity plus stage and cause on failure.
func (r *Resolver) resolveOne(ctx context.Context, e types.MusicEntity, cfg types.ResolveConfig) Outcome {
	key := CacheKey{
		Kind:    e.Kind,
		Name:    e.Name,
		Artist:  e.Artist,
		Year:    e.Year,
		Country: cfg.Country,
	}

	if r.Cache != nil {
		if cached, err := r.Cache.Get(ctx, key); err == nil && cached != nil {
			e.PlatformURL = cached.PlatformURL
			e.SmartLinkURL = cached.SmartLinkURL
			e.Confidence = cached.Confidence
			return Outcome{Entity: e, CacheHit: true}
		}
	}

	res, err := r.searchStage(ctx, e, cfg)
	if err != nil {
		return Outcome{Entity: e, Stage: StageSearch, Err: err}
	}

	link, err := r.smartLinkStage(ctx, res.URL)
	if err != nil {
		return Outcome{Entity: e, Resolution: res, Stage: StageSmartLink, Err: err}
	}

	e.PlatformURL = res.URL
	e.SmartLinkURL = link.URL
	e.Confidence = res.Confidence

	if r.Cache != nil {
		// Cache write failures are not resolution failures.
		_ = r.Cache.Put(ctx, key, CachedLink{
			Platform:     res.Platform,
			PlatformURL:  res.URL,
			SmartLinkURL: link.URL,
			Confidence:   res.Confidence,
		})
	}

	return Outcome{Entity: e, Resolution: res}
}

// searchStage queries the platform backend with retry and picks the
// best-scoring result. An empty result set or a top score below MinScore
// is terminal, not retried.
func (r *Resolver) searchStage(ctx context.Context, e types.MusicEntity, cfg types.ResolveConfig) (*types.Resolution, error) {
	q := Query{
		Name:    e.Name,
		Artist:  e.Artist,
		Kind:    e.Kind,
		Year:    e.Year,
		Country: cfg.Country,
	}

	var page *SearchPage
	err := httputil.Do(ctx, func() error {
		p, err := r.Platform.Search(ctx, q)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(page.Results) == 0 {
		return nil, fmt.Errorf("no %s results for %q", r.Platform.Name(), q.Name)
	}

	best, score, ok := bestMatch(q, page.Results)
	if !ok || score < cfg.MinScore {
		return nil, fmt.Errorf("best %s match scored %.2f, below minimum %.2f", r.Platform.Name(), score, cfg.MinScore)
	}

	return &types.Resolution{
		Platform:    r.Platform.Name(),
		URL:         best.URL,
		Confidence:  score,
		RawResponse: page.Raw,
	}, nil
}

// smartLinkStage converts the platform URL with retry.
func (r *Resolver) smartLinkStage(ctx context.Context, platformURL string) (types.SmartLink, error) {
	var link types.SmartLink
	err := httputil.Do(ctx, func() error {
		l, err := r.SmartLink.Resolve(ctx, platformURL)
		if err != nil {
			return err
		}
		link = l
		return nil
	})
	return link, err
}
