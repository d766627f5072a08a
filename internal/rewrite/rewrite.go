// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rewrite produces the final document by wrapping resolved spans in
// hyperlink commands at their original offsets.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/pdiddy/musiclink/pkg/types"
)

// defaultWrapperCommand is the hyperlink command used for resolved spans.
const defaultWrapperCommand = "href"

// Apply rebuilds doc by splicing the text between sorted entity boundaries
// and wrapping only resolved entities, so insertions never disturb later
// offsets. Unresolved entities pass through byte-for-byte, and output
// outside wrapped spans is identical to the input.
//
// Entities must be sorted by Start, non-overlapping, within bounds, and
// each SourceText must equal doc[Start:End]. Violations are programmer
// errors upstream and are reported, not silently skipped.
func Apply(doc string, entities []types.MusicEntity) (string, error) {
	if err := validate(doc, entities); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, e := range entities {
		b.WriteString(doc[last:e.Start])
		if e.Resolved() {
			b.WriteString(wrap(e.SmartLinkURL, e.SourceText))
		} else {
			b.WriteString(doc[e.Start:e.End])
		}
		last = e.End
	}
	b.WriteString(doc[last:])
	return b.String(), nil
}

// wrap renders the hyperlink construct, keeping the original source text
// verbatim as the second argument.
func wrap(url, sourceText string) string {
	return fmt.Sprintf(`\%s{%s}{%s}`, defaultWrapperCommand, url, sourceText)
}

func validate(doc string, entities []types.MusicEntity) error {
	prevEnd := 0
	for _, e := range entities {
		if e.Start < 0 || e.End > len(doc) || e.End <= e.Start {
			return fmt.Errorf("candidate %d has invalid span [%d, %d) for document of %d bytes",
				e.CandidateID, e.Start, e.End, len(doc))
		}
		if e.Start < prevEnd {
			return fmt.Errorf("candidate %d span [%d, %d) overlaps or is out of order",
				e.CandidateID, e.Start, e.End)
		}
		if doc[e.Start:e.End] != e.SourceText {
			return fmt.Errorf("candidate %d source text %q does not match document span %q",
				e.CandidateID, e.SourceText, doc[e.Start:e.End])
		}
		prevEnd = e.End
	}
	return nil
}
