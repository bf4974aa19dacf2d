package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// CacheStats is a snapshot of cache effectiveness since process start.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// CacheRepository stores finished result batches keyed by query, so repeated
// searches within the TTL skip the model round trip entirely.
type CacheRepository struct {
	db  *DB
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *DB, ttl time.Duration) *CacheRepository {
	return &CacheRepository{db: db, ttl: ttl}
}

// CacheKey derives a stable key for a query within one operation kind.
// Searches and recommendations never share entries.
func CacheKey(kind, query string) string {
	hash := sha256.Sum256([]byte(kind + "\x00" + query))
	return fmt.Sprintf("%x", hash[:16])
}

// Get returns the cached result batch for key, or nil on a miss. Expired
// entries count as misses and are deleted on sight.
func (r *CacheRepository) Get(key string) ([]map[string]any, error) {
	var payload string
	var expiresAt time.Time
	err := r.db.QueryRow(`
		SELECT payload, expires_at FROM search_cache WHERE cache_key = ?
	`, key).Scan(&payload, &expiresAt)

	if err == sql.ErrNoRows {
		r.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if time.Now().After(expiresAt) {
		r.misses.Add(1)
		_, err = r.db.Exec("DELETE FROM search_cache WHERE cache_key = ?", key)
		if err != nil {
			return nil, fmt.Errorf("failed to evict expired cache entry: %w", err)
		}
		return nil, nil
	}

	var results []map[string]any
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, fmt.Errorf("failed to decode cache payload: %w", err)
	}

	r.hits.Add(1)
	return results, nil
}

// Set stores a result batch under key, replacing any existing entry.
func (r *CacheRepository) Set(key, kind string, results []map[string]any) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO search_cache (cache_key, kind, payload, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP,
			expires_at = excluded.expires_at
	`, key, kind, string(payload), time.Now().Add(r.ttl))

	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Lookup is query-keyed Get.
func (r *CacheRepository) Lookup(kind, query string) ([]map[string]any, error) {
	return r.Get(CacheKey(kind, query))
}

// Store is query-keyed Set.
func (r *CacheRepository) Store(kind, query string, results []map[string]any) error {
	return r.Set(CacheKey(kind, query), kind, results)
}

// Clear removes all cache entries and returns how many were deleted.
func (r *CacheRepository) Clear() (int, error) {
	result, err := r.db.Exec("DELETE FROM search_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared entries: %w", err)
	}

	return int(deleted), nil
}

// Count returns the number of unexpired cache entries.
func (r *CacheRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM search_cache WHERE expires_at > ?
	`, time.Now()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}

// Stats returns hit/miss counters and the current entry count.
func (r *CacheRepository) Stats() (CacheStats, error) {
	size, err := r.Count()
	if err != nil {
		return CacheStats{}, err
	}
	return CacheStats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Size:   size,
	}, nil
}
