// Package cache remembers translations per language pair so repeated
// payloads never reach the engine twice.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"loc-translator/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS translation_cache (
	hash        TEXT PRIMARY KEY,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	source      TEXT NOT NULL,
	translated  TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const getSQL = `SELECT translated FROM translation_cache WHERE hash = $1`

const upsertSQL = `
INSERT INTO translation_cache (hash, source_lang, target_lang, source, translated)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (hash) DO UPDATE SET translated = EXCLUDED.translated, updated_at = now()`

const listSQL = `
SELECT hash, translated FROM translation_cache
WHERE source_lang = $1 AND target_lang = $2`

// TranslationCache provides in-memory caching for one language pair,
// optionally backed by PostgreSQL.
type TranslationCache struct {
	pool   *pgxpool.Pool
	from   string
	to     string
	mu     sync.RWMutex
	memory map[string]string // hash → translated text
	hits   atomic.Int64
	// preloaded is set once memory holds every stored row of the pair.
	preloaded atomic.Bool
}

// NewTranslationCache creates a cache for from→to. A nil pool keeps the
// cache in memory only.
func NewTranslationCache(pool *pgxpool.Pool, from, to string) *TranslationCache {
	return &TranslationCache{
		pool:   pool,
		from:   from,
		to:     to,
		memory: make(map[string]string),
	}
}

// Persistent reports whether the cache writes through to PostgreSQL.
func (c *TranslationCache) Persistent() bool {
	return c.pool != nil
}

// EnsureSchema creates the cache table if needed.
func (c *TranslationCache) EnsureSchema(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	if _, err := c.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

func (c *TranslationCache) key(source string) string {
	return textutil.Hash(c.from, c.to, source)
}

// Get retrieves a cached translation of source.
func (c *TranslationCache) Get(ctx context.Context, source string) (string, bool) {
	hash := c.key(source)

	c.mu.RLock()
	v, ok := c.memory[hash]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v, true
	}
	pool := c.remote()
	if pool == nil {
		return "", false
	}

	var translated string
	err := pool.QueryRow(ctx, getSQL, hash).Scan(&translated)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Str("text", textutil.Truncate(source, 30)).Msg("Cache lookup failed")
		}
		return "", false
	}

	c.mu.Lock()
	c.memory[hash] = translated
	c.mu.Unlock()
	c.hits.Add(1)
	return translated, true
}

// remote returns the pool to consult on a memory miss, or nil when memory
// already mirrors the table.
func (c *TranslationCache) remote() *pgxpool.Pool {
	if c.preloaded.Load() {
		return nil
	}
	return c.pool
}

// Set stores one translation.
func (c *TranslationCache) Set(ctx context.Context, source, translated string) error {
	return c.SetBatch(ctx, map[string]string{source: translated})
}

// SetBatch stores many translations with a single round trip.
func (c *TranslationCache) SetBatch(ctx context.Context, pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	c.mu.Lock()
	for source, translated := range pairs {
		hash := c.key(source)
		c.memory[hash] = translated
		batch.Queue(upsertSQL, hash, c.from, c.to, source, translated)
	}
	c.mu.Unlock()

	if c.pool == nil {
		return nil
	}
	if err := c.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Preload loads every stored translation of the language pair into memory.
// After a successful preload, misses no longer query PostgreSQL.
func (c *TranslationCache) Preload(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}

	rows, err := c.pool.Query(ctx, listSQL, c.from, c.to)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var hash, translated string
		if err := rows.Scan(&hash, &translated); err != nil {
			return fmt.Errorf("scan cache row: %w", err)
		}
		c.memory[hash] = translated
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	c.preloaded.Store(true)

	log.Info().Int("count", count).Str("from", c.from).Str("to", c.to).Msg("Preloaded translation cache")
	return nil
}

// Len returns the number of translations held in memory.
func (c *TranslationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

// Hits returns how many lookups were answered from the cache.
func (c *TranslationCache) Hits() int64 {
	return c.hits.Load()
}
