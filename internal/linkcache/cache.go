// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkcache persists successful resolutions in a SQLite database so
// repeated runs over the same document skip the network entirely. Failures
// are never cached.
package linkcache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/musiclink/internal/resolve"
)

const dbFile = "musiclink.db"

// DefaultPath returns the cache database location under the user cache
// directory.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache directory: %w", err)
	}
	return filepath.Join(base, "musiclink", dbFile), nil
}

// Cache is a SQLite-backed resolve.Cache.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS resolutions (
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		year INTEGER NOT NULL,
		country TEXT NOT NULL,
		platform TEXT NOT NULL,
		platform_url TEXT NOT NULL,
		smartlink_url TEXT NOT NULL,
		confidence REAL NOT NULL,
		resolved_at TEXT NOT NULL,
		UNIQUE(kind, name, artist, year, country)
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the cached link for key, or nil on a miss.
func (c *Cache) Get(ctx context.Context, key resolve.CacheKey) (*resolve.CachedLink, error) {
	var link resolve.CachedLink
	err := c.db.QueryRowContext(ctx,
		`SELECT platform, platform_url, smartlink_url, confidence
		 FROM resolutions
		 WHERE kind = ? AND name = ? AND artist = ? AND year = ? AND country = ?`,
		string(key.Kind), key.Name, key.Artist, key.Year, key.Country,
	).Scan(&link.Platform, &link.PlatformURL, &link.SmartLinkURL, &link.Confidence)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	return &link, nil
}

// Put stores a successful resolution, replacing any earlier entry for the
// same key.
func (c *Cache) Put(ctx context.Context, key resolve.CacheKey, link resolve.CachedLink) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO resolutions (kind, name, artist, year, country, platform, platform_url, smartlink_url, confidence, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(kind, name, artist, year, country) DO UPDATE SET
			platform=excluded.platform, platform_url=excluded.platform_url,
			smartlink_url=excluded.smartlink_url, confidence=excluded.confidence,
			resolved_at=excluded.resolved_at`,
		string(key.Kind), key.Name, key.Artist, key.Year, key.Country,
		link.Platform, link.PlatformURL, link.SmartLinkURL, link.Confidence,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing resolution: %w", err)
	}
	return nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int
	Albums  int
	Tracks  int
	Oldest  string
	Newest  string
}

// Stat reports entry counts and the resolution time range.
func (c *Cache) Stat(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(kind = 'album'), 0),
			COALESCE(SUM(kind = 'track'), 0),
			COALESCE(MIN(resolved_at), ''),
			COALESCE(MAX(resolved_at), '')
		 FROM resolutions`,
	).Scan(&s.Entries, &s.Albums, &s.Tracks, &s.Oldest, &s.Newest)
	if err != nil {
		return Stats{}, fmt.Errorf("querying cache stats: %w", err)
	}
	return s, nil
}

// Clear removes every cached resolution and returns the number removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM resolutions`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
