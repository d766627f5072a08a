// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/musiclink/internal/httputil"
)

// withSongLinkServer points songLinkBase at a test server for the duration
// of the test and returns a redirect-preserving backend.
func withSongLinkServer(t *testing.T, handler http.HandlerFunc) *SongLinkBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	orig := songLinkBase
	songLinkBase = ts.URL + "/"
	t.Cleanup(func() { songLinkBase = orig })

	return NewSongLinkBackend(5*time.Second, "musiclink/test")
}

func TestSongLinkResolve(t *testing.T) {
	b := withSongLinkServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/https://music.apple.com/us/album/1832251919", r.URL.Path)
		w.Header().Set("Location", "https://album.link/i/1832251919")
		w.WriteHeader(http.StatusFound)
	})

	link, err := b.Resolve(context.Background(), "https://music.apple.com/us/album/1832251919")
	require.NoError(t, err)
	assert.Equal(t, "https://album.link/i/1832251919", link.URL)
	assert.Contains(t, link.RedirectorURL, "https://music.apple.com/us/album/1832251919")
}

func TestSongLinkResolveOnlyFirstHop(t *testing.T) {
	// The backend must report the first redirect, not chase it to the chain's end.
	b := withSongLinkServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hop2" {
			t.Error("backend followed the redirect")
			return
		}
		w.Header().Set("Location", "/hop2")
		w.WriteHeader(http.StatusMovedPermanently)
	})

	link, err := b.Resolve(context.Background(), "https://music.apple.com/x")
	require.NoError(t, err)
	assert.Equal(t, "/hop2", link.URL)
}

func TestSongLinkResolveFailures(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantTransient bool
	}{
		{
			name: "non-redirect 2xx is transient",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantTransient: true,
		},
		{
			name: "server error is transient",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantTransient: true,
		},
		{
			name: "redirect without Location is terminal",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusFound)
			},
			wantTransient: false,
		},
		{
			name: "not-found redirect is terminal",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "https://song.link/not-found")
				w.WriteHeader(http.StatusFound)
			},
			wantTransient: false,
		},
		{
			name: "client error is terminal",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantTransient: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := withSongLinkServer(t, tt.handler)
			_, err := b.Resolve(context.Background(), "https://music.apple.com/x")
			require.Error(t, err)
			assert.Equal(t, tt.wantTransient, httputil.IsTransient(err))
		})
	}
}
