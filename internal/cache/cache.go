package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Record describes the last conversion of one header file.
type Record struct {
	SourceHash string
	OutputHash string
}

// ConversionCache remembers which headers have already been converted so
// unchanged files can be skipped. It is always held in memory and is
// optionally persisted in PostgreSQL.
type ConversionCache struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string]Record // source path → last conversion
}

// NewConversionCache creates a cache. A nil pool keeps it in memory only.
func NewConversionCache(pool *pgxpool.Pool) *ConversionCache {
	return &ConversionCache{
		pool:   pool,
		memory: make(map[string]Record),
	}
}

// Connect opens a PostgreSQL pool for the cache.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS header_conversions (
	path         TEXT PRIMARY KEY,
	source_hash  TEXT NOT NULL,
	output_hash  TEXT NOT NULL,
	converted_at TIMESTAMPTZ NOT NULL
)`

const selectRecordSQL = `SELECT source_hash, output_hash FROM header_conversions WHERE path = $1`

const selectAllSQL = `SELECT path, source_hash, output_hash FROM header_conversions`

const upsertRecordSQL = `
INSERT INTO header_conversions (path, source_hash, output_hash, converted_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (path) DO UPDATE
SET source_hash = EXCLUDED.source_hash,
    output_hash = EXCLUDED.output_hash,
    converted_at = EXCLUDED.converted_at`

// EnsureSchema creates the backing table if needed.
func (c *ConversionCache) EnsureSchema(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	if _, err := c.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create header_conversions: %w", err)
	}
	return nil
}

// Preload loads every persisted record into memory.
func (c *ConversionCache) Preload(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}

	rows, err := c.pool.Query(ctx, selectAllSQL)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]Record)
	for rows.Next() {
		var path string
		var rec Record
		if err := rows.Scan(&path, &rec.SourceHash, &rec.OutputHash); err != nil {
			return fmt.Errorf("scan cache row: %w", err)
		}
		loaded[path] = rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	for path, rec := range loaded {
		c.memory[path] = rec
	}
	c.mu.Unlock()

	log.Info().Int("count", len(loaded)).Msg("Preloaded conversion cache")
	return nil
}

// Get returns the last recorded conversion of path.
func (c *ConversionCache) Get(ctx context.Context, path string) (Record, bool) {
	c.mu.RLock()
	rec, ok := c.memory[path]
	c.mu.RUnlock()
	if ok || c.pool == nil {
		return rec, ok
	}

	err := c.pool.QueryRow(ctx, selectRecordSQL, path).Scan(&rec.SourceHash, &rec.OutputHash)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Str("path", path).Msg("Cache lookup failed")
		}
		return Record{}, false
	}

	c.mu.Lock()
	c.memory[path] = rec
	c.mu.Unlock()

	return rec, true
}

// Fresh reports whether path was last converted from content hashing to
// sourceHash and the output it produced is still outputHash.
func (c *ConversionCache) Fresh(ctx context.Context, path, sourceHash, outputHash string) bool {
	rec, ok := c.Get(ctx, path)
	return ok && rec.SourceHash == sourceHash && rec.OutputHash == outputHash
}

// Set stores a conversion in memory and, when configured, in PostgreSQL.
func (c *ConversionCache) Set(ctx context.Context, path string, rec Record) error {
	c.mu.Lock()
	c.memory[path] = rec
	c.mu.Unlock()

	if c.pool == nil {
		return nil
	}

	if _, err := c.pool.Exec(ctx, upsertRecordSQL, path, rec.SourceHash, rec.OutputHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the PostgreSQL pool, if any.
func (c *ConversionCache) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
