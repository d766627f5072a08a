// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/musiclink/internal/httputil"
	"github.com/pdiddy/musiclink/pkg/types"
)

// itunesSearchBase is the iTunes Search API endpoint. Declared as a var so
// tests can substitute an httptest server.
var itunesSearchBase = "https://itunes.apple.com/search"

const itunesResultLimit = 10

// ITunesBackend queries the iTunes Search API, which covers the Apple
// Music catalog and needs no authentication.
type ITunesBackend struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the platform identifier.
func (b *ITunesBackend) Name() string { return "apple_music" }

// Search queries the iTunes Search API for the entity and returns candidate
// matches in the API's own relevance order. Network errors and retriable
// HTTP statuses are marked transient for the retry combinator.
func (b *ITunesBackend) Search(ctx context.Context, q Query) (*SearchPage, error) {
	entity := "album"
	if q.Kind == types.KindTrack {
		entity = "song"
	}

	params := url.Values{
		"term":    {strings.TrimSpace(q.Name + " " + q.Artist)},
		"entity":  {entity},
		"country": {q.Country},
		"limit":   {strconv.Itoa(itunesResultLimit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, itunesSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, httputil.Transient(fmt.Errorf("iTunes API request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("iTunes API returned HTTP %d", resp.StatusCode)
		if httputil.RetriableStatus(resp.StatusCode) {
			return nil, httputil.Transient(err)
		}
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Transient(fmt.Errorf("reading iTunes response: %w", err))
	}

	var ir itunesResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return nil, fmt.Errorf("parsing iTunes response: %w", err)
	}

	page := &SearchPage{Raw: raw}
	for _, item := range ir.Results {
		r := PlatformResult{
			Artist: item.ArtistName,
			Year:   releaseYear(item.ReleaseDate),
		}
		if q.Kind == types.KindAlbum {
			r.Title = item.CollectionName
			r.URL = item.CollectionViewURL
		} else {
			r.Title = item.TrackName
			r.URL = item.TrackViewURL
		}
		if r.Title == "" || r.URL == "" {
			continue
		}
		page.Results = append(page.Results, r)
	}
	return page, nil
}

// releaseYear extracts the year from an ISO 8601 release date such as
// "1998-09-29T07:00:00Z". Returns 0 when absent or malformed.
func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// iTunes Search API JSON structures.
type itunesResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []itunesItem `json:"results"`
}

type itunesItem struct {
	WrapperType       string `json:"wrapperType"`
	ArtistName        string `json:"artistName"`
	CollectionName    string `json:"collectionName"`
	TrackName         string `json:"trackName"`
	CollectionViewURL string `json:"collectionViewUrl"`
	TrackViewURL      string `json:"trackViewUrl"`
	ReleaseDate       string `json:"releaseDate"`
}
