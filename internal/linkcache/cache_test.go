// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/musiclink/internal/resolve"
	"github.com/pdiddy/musiclink/pkg/types"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "musiclink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func testKey() resolve.CacheKey {
	return resolve.CacheKey{
		Kind:    types.KindAlbum,
		Name:    "Aquemini",
		Artist:  "OutKast",
		Year:    1998,
		Country: "us",
	}
}

func TestCacheGetMiss(t *testing.T) {
	c := openTestCache(t)
	link, err := c.Get(context.Background(), testKey())
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestCachePutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	stored := resolve.CachedLink{
		Platform:     "apple_music",
		PlatformURL:  "https://music.apple.com/us/album/42",
		SmartLinkURL: "https://album.link/i/42",
		Confidence:   0.9,
	}
	require.NoError(t, c.Put(ctx, testKey(), stored))

	got, err := c.Get(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored, *got)

	// Different key fields miss.
	other := testKey()
	other.Country = "de"
	miss, err := c.Get(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCachePutReplacesEntry(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, testKey(), resolve.CachedLink{SmartLinkURL: "https://album.link/old", Platform: "apple_music", PlatformURL: "u", Confidence: 0.6}))
	require.NoError(t, c.Put(ctx, testKey(), resolve.CachedLink{SmartLinkURL: "https://album.link/new", Platform: "apple_music", PlatformURL: "u", Confidence: 0.9}))

	got, err := c.Get(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://album.link/new", got.SmartLinkURL)

	stats, err := c.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestCacheStatAndClear(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	albumKey := testKey()
	trackKey := resolve.CacheKey{Kind: types.KindTrack, Name: "Rosa Parks", Artist: "OutKast", Country: "us"}
	require.NoError(t, c.Put(ctx, albumKey, resolve.CachedLink{Platform: "apple_music", PlatformURL: "a", SmartLinkURL: "sa", Confidence: 1}))
	require.NoError(t, c.Put(ctx, trackKey, resolve.CachedLink{Platform: "apple_music", PlatformURL: "b", SmartLinkURL: "sb", Confidence: 1}))

	stats, err := c.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Albums)
	assert.Equal(t, 1, stats.Tracks)
	assert.NotEmpty(t, stats.Newest)

	removed, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err = c.Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}
