package cache

import (
	"context"
	"sync"

	"cs2ts/internal/textutil"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Querier is the subset of *pgxpool.Pool the cache uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS conversion_cache (
	key        TEXT PRIMARY KEY,
	output     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ConversionCache provides in-memory + PostgreSQL-backed caching of
// conversion output, keyed by source text and options fingerprint.
type ConversionCache struct {
	db     Querier
	mu     sync.RWMutex
	memory map[string]string // key → output
}

// New creates a cache. A nil db keeps entries in memory only.
func New(db Querier) *ConversionCache {
	return &ConversionCache{
		db:     db,
		memory: make(map[string]string),
	}
}

// Key derives the cache key for a source and options fingerprint.
func Key(source, fingerprint string) string {
	return textutil.Hash(fingerprint + "\x00" + source)
}

// EnsureSchema creates the cache table.
func (c *ConversionCache) EnsureSchema(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "create cache table")
	}
	return nil
}

// Get retrieves a cached conversion. Database errors count as a miss.
func (c *ConversionCache) Get(ctx context.Context, source, fingerprint string) (string, bool) {
	key := Key(source, fingerprint)

	c.mu.RLock()
	if v, ok := c.memory[key]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.db == nil {
		return "", false
	}

	var output string
	err := c.db.QueryRow(ctx, `SELECT output FROM conversion_cache WHERE key = $1`, key).Scan(&output)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Str("key", textutil.Truncate(key, 12)).Msg("Cache lookup failed")
		}
		return "", false
	}

	c.mu.Lock()
	c.memory[key] = output
	c.mu.Unlock()

	return output, true
}

// Set stores a conversion in memory and, when configured, in PostgreSQL.
func (c *ConversionCache) Set(ctx context.Context, source, fingerprint, output string) error {
	key := Key(source, fingerprint)

	c.mu.Lock()
	c.memory[key] = output
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	_, err := c.db.Exec(ctx, `
		INSERT INTO conversion_cache (key, output)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET output = EXCLUDED.output, created_at = now()
	`, key, output)
	if err != nil {
		return errors.Wrap(err, "cache set")
	}

	return nil
}

// Len returns the number of entries held in memory.
func (c *ConversionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
