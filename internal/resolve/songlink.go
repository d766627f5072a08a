// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/musiclink/internal/httputil"
	"github.com/pdiddy/musiclink/pkg/types"
)

// songLinkBase is the song.link redirector prefix. Declared as a var so
// tests can substitute an httptest server.
var songLinkBase = "https://song.link/"

// SongLinkBackend converts platform URLs to smart links via the song.link
// redirector. The smart link is the destination of the first redirect hop,
// so the client must not follow redirects.
type SongLinkBackend struct {
	Client    *http.Client
	UserAgent string
}

// NewSongLinkBackend returns a backend whose client reports redirects
// instead of following them.
func NewSongLinkBackend(timeout time.Duration, userAgent string) *SongLinkBackend {
	return &SongLinkBackend{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent: userAgent,
	}
}

// Resolve requests the redirector URL for platformURL and extracts the
// smart link from the redirect's Location header. A 2xx response is marked
// transient: the redirector serves interstitial pages under load and a
// later attempt usually redirects. A redirect to the redirector's
// not-found page is terminal.
func (b *SongLinkBackend) Resolve(ctx context.Context, platformURL string) (types.SmartLink, error) {
	link := types.SmartLink{RedirectorURL: songLinkBase + platformURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.RedirectorURL, nil)
	if err != nil {
		return link, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return link, httputil.Transient(fmt.Errorf("redirector request: %w", err))
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		location := resp.Header.Get("Location")
		if location == "" {
			return link, fmt.Errorf("redirect response without Location header")
		}
		if strings.Contains(location, "/not-found") {
			return link, fmt.Errorf("redirector has no smart link for %s", platformURL)
		}
		link.URL = location
		return link, nil

	case httputil.RetriableStatus(resp.StatusCode):
		return link, httputil.Transient(fmt.Errorf("redirector returned HTTP %d", resp.StatusCode))

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return link, httputil.Transient(fmt.Errorf("redirector returned HTTP %d instead of a redirect", resp.StatusCode))

	default:
		return link, fmt.Errorf("redirector returned HTTP %d", resp.StatusCode)
	}
}
