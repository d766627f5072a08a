// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract scans LaTeX documents for marked music references and
// produces candidates with exact byte offsets into the original text.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/musiclink/pkg/types"
)

const (
	defaultAlbumCommand = "album"
	defaultTrackCommand = "song"
)

var defaultWrapperCommands = []string{"href"}

// markerPattern builds the regexp for one marker command. The single
// brace-delimited argument may not contain braces; titles with nested
// braces are out of scope.
func markerPattern(command string) *regexp.Regexp {
	return regexp.MustCompile(`\\` + regexp.QuoteMeta(command) + `\{([^{}]*)\}`)
}

// Scan extracts album and track candidates from doc in document order, with
// CandidateIDs assigned 0..N-1. Spans already enclosed in a hyperlink
// wrapper invocation are skipped, which is the double-linking guard.
//
// The only fatal input is text that is not valid UTF-8. Fragments that do
// not match a marker pattern are simply not extracted.
func Scan(doc string, cfg types.ExtractConfig) ([]types.MusicEntity, error) {
	if !utf8.ValidString(doc) {
		return nil, fmt.Errorf("document is not valid UTF-8")
	}

	albumCmd := cfg.AlbumCommand
	if albumCmd == "" {
		albumCmd = defaultAlbumCommand
	}
	trackCmd := cfg.TrackCommand
	if trackCmd == "" {
		trackCmd = defaultTrackCommand
	}
	wrappers := cfg.WrapperCommands
	if len(wrappers) == 0 {
		wrappers = defaultWrapperCommands
	}

	linked := wrapperSpans(doc, wrappers)

	var entities []types.MusicEntity
	for _, mk := range []struct {
		pattern *regexp.Regexp
		kind    types.Kind
	}{
		{markerPattern(albumCmd), types.KindAlbum},
		{markerPattern(trackCmd), types.KindTrack},
	} {
		for _, m := range mk.pattern.FindAllStringSubmatchIndex(doc, -1) {
			start, end := m[0], m[1]
			title := strings.TrimSpace(doc[m[2]:m[3]])
			if title == "" {
				continue
			}
			if insideAny(linked, start, end) {
				continue
			}
			entities = append(entities, types.MusicEntity{
				Name:       title,
				Kind:       mk.kind,
				SourceText: doc[start:end],
				Start:      start,
				End:        end,
			})
		}
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})
	for i := range entities {
		entities[i].CandidateID = i
	}
	return entities, nil
}

// span is a half-open byte range within the document.
type span struct {
	start, end int
}

// insideAny reports whether [start, end) lies entirely within one of the spans.
func insideAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if start >= s.start && end <= s.end {
			return true
		}
	}
	return false
}

// wrapperSpans locates every invocation of the given hyperlink commands and
// returns the full extent of each, covering all consecutive brace-delimited
// arguments. The argument scan is depth-aware because the text argument of
// \href{url}{...} legitimately contains nested braces.
func wrapperSpans(doc string, commands []string) []span {
	var spans []span
	for _, cmd := range commands {
		needle := `\` + cmd + `{`
		from := 0
		for {
			idx := strings.Index(doc[from:], needle)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(needle) - 1 // position of the opening brace

			// Consume consecutive brace groups.
			for end < len(doc) && doc[end] == '{' {
				groupEnd, ok := matchBrace(doc, end)
				if !ok {
					break
				}
				end = groupEnd
			}

			spans = append(spans, span{start: start, end: end})
			from = end
			if from <= start {
				from = start + 1
			}
		}
	}
	return spans
}

// matchBrace returns the offset just past the brace group opening at open,
// or false when the group is unterminated.
func matchBrace(doc string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(doc); i++ {
		switch doc[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
