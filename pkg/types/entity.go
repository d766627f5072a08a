// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the musiclink pipeline.
package types

import "fmt"

// Kind classifies a music reference as an album or a single track.
type Kind string

const (
	KindAlbum Kind = "album"
	KindTrack Kind = "track"
)

// ParseKind validates a kind string coming from configuration, flags, or an
// agent response.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAlbum, KindTrack:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown entity kind %q (want %q or %q)", s, KindAlbum, KindTrack)
	}
}

// MusicEntity is a music reference found in a LaTeX document. It is created
// by the extractor, optionally refined by an agent, annotated by the
// resolver, and finally consumed by the rewriter.
//
// Start and End are half-open offsets into the original document. They are
// fixed at extraction time and never change afterwards; the rewriter
// computes insertion adjustments itself rather than mutating them.
type MusicEntity struct {
	// CandidateID is the stable identity assigned at extraction. Agent
	// responses are merged back by this ID, never by list position.
	CandidateID int `json:"candidate_id" yaml:"candidate_id"`

	// Name is the working title. Agents may refine it; the resolver never does.
	Name string `json:"name" yaml:"name"`

	// Artist is empty until enriched. The resolver treats empty as
	// "unknown, search by title only".
	Artist string `json:"artist,omitempty" yaml:"artist,omitempty"`

	// Kind is fixed at extraction from the marker command that matched.
	// An agent may change it; the change is honored as-is.
	Kind Kind `json:"kind" yaml:"kind"`

	// Year is 0 when unknown. Used only as a scoring tie-break.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// SourceText is the exact original substring, preserved verbatim
	// inside the eventual hyperlink wrapper.
	SourceText string `json:"source_text" yaml:"source_text"`

	Start int `json:"start_index" yaml:"start_index"`
	End   int `json:"end_index" yaml:"end_index"`

	// Resolver outputs. All remain zero when resolution fails, which
	// signals the rewriter to leave the span untouched.
	PlatformURL  string  `json:"platform_url,omitempty" yaml:"platform_url,omitempty"`
	SmartLinkURL string  `json:"smartlink_url,omitempty" yaml:"smartlink_url,omitempty"`
	Confidence   float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// Resolved reports whether the entity carries a usable smart link.
func (e MusicEntity) Resolved() bool {
	return e.SmartLinkURL != ""
}

// Resolution is the platform-search stage output for one entity.
type Resolution struct {
	// Platform identifies the search backend that produced the URL
	// (e.g. "apple_music").
	Platform string `json:"platform" yaml:"platform"`

	// URL is the canonical platform URL of the best-scoring result.
	URL string `json:"url" yaml:"url"`

	// Confidence is the achieved additive match score. It is reported
	// raw and may exceed 1.0 when title, artist, and year all match.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// RawResponse is the backend payload, retained for diagnostics.
	RawResponse []byte `json:"-" yaml:"-"`
}

// SmartLink is the redirect stage output: the platform-agnostic link plus
// the redirector URL that produced it.
type SmartLink struct {
	URL           string `json:"smartlink_url" yaml:"smartlink_url"`
	RedirectorURL string `json:"redirector_url" yaml:"redirector_url"`
}
