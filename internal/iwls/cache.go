package iwls

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oceanobs/tidewriter/internal/log"
)

// Cache is a TTL-bounded response cache backed by SQLite. Batch generation
// fetches the same station endpoints repeatedly; the cache keeps that off
// the upstream API.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenCache opens (creating if needed) a cache database at path. Use
// ":memory:" for an ephemeral cache.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database %s: %w", path, err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS api_cache (
		url        TEXT PRIMARY KEY,
		body       BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached body for a URL if it is still fresh.
func (c *Cache) Get(url string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow("SELECT body, fetched_at FROM api_cache WHERE url = ?", url).Scan(&body, &fetchedAt)
	if err != nil {
		return nil, false
	}
	if time.Since(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false
	}
	return body, true
}

// Put stores a response body for a URL. Cache write failures are logged,
// not surfaced; the cache only ever saves work.
func (c *Cache) Put(url string, body []byte) {
	_, err := c.db.Exec(
		"INSERT INTO api_cache (url, body, fetched_at) VALUES (?, ?, ?) ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at",
		url, body, time.Now().Unix(),
	)
	if err != nil {
		log.Warnw("cache write failed", "url", url, "error", err)
	}
}

// Prune drops entries older than the TTL.
func (c *Cache) Prune() error {
	cutoff := time.Now().Add(-c.ttl).Unix()
	_, err := c.db.Exec("DELETE FROM api_cache WHERE fetched_at < ?", cutoff)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
