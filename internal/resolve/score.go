// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"strings"

	"golang.org/x/text/cases"
)

// Additive scoring rubric for platform search results. Exact and partial
// title terms are mutually exclusive, as are the two year terms.
const (
	scoreTitleExact   = 0.6
	scoreTitlePartial = 0.3
	scoreArtistMatch  = 0.3
	scoreYearExact    = 0.2
	scoreYearNear     = 0.1
)

var foldCaser = cases.Fold()

// normalize lowercases via Unicode case folding and collapses runs of
// whitespace, so comparisons are insensitive to case and spacing.
func normalize(s string) string {
	return strings.Join(strings.Fields(foldCaser.String(s)), " ")
}

// scoreResult rates one platform result against the query.
func scoreResult(q Query, r PlatformResult) float64 {
	score := 0.0

	qTitle := normalize(q.Name)
	rTitle := normalize(r.Title)
	switch {
	case qTitle == rTitle:
		score += scoreTitleExact
	case qTitle != "" && rTitle != "" &&
		(strings.Contains(rTitle, qTitle) || strings.Contains(qTitle, rTitle)):
		score += scoreTitlePartial
	}

	if qArtist := normalize(q.Artist); qArtist != "" {
		if strings.Contains(normalize(r.Artist), qArtist) {
			score += scoreArtistMatch
		}
	}

	if q.Year != 0 && r.Year != 0 {
		switch diff := q.Year - r.Year; {
		case diff == 0:
			score += scoreYearExact
		case diff == 1 || diff == -1:
			score += scoreYearNear
		}
	}

	return score
}

// bestMatch returns the highest-scoring result. Ties are broken by the
// platform's own ordering: the first result seen at the top score wins.
func bestMatch(q Query, results []PlatformResult) (PlatformResult, float64, bool) {
	var best PlatformResult
	bestScore := -1.0
	for _, r := range results {
		if s := scoreResult(q, r); s > bestScore {
			best = r
			bestScore = s
		}
	}
	if bestScore < 0 {
		return PlatformResult{}, 0, false
	}
	return best, bestScore, true
}
