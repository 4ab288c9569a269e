// Package cache is the content-addressed completion cache. Identical
// requests are served from the store without a network call; streamed
// completions are kept as their ordered chunk sequence so a replay
// reproduces the original delivery order.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jellydator/ttlcache/v3"
	_ "modernc.org/sqlite"

	"sgpt/model"
)

const memTTL = 1 * time.Hour

// fingerprintRequest is the canonical serialized form hashed into a cache
// key. It carries every input that affects completion content and nothing
// else: the conversation id in particular is absent, since the transcript
// is already folded into the message list.
type fingerprintRequest struct {
	Messages    []fingerprintMessage `json:"messages"`
	Model       string               `json:"model"`
	Temperature float64              `json:"temperature"`
	TopP        float64              `json:"top_p"`
}

type fingerprintMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fingerprint computes the deterministic cache key for an outgoing
// request. Changing any message, the model, temperature or top-p changes
// the key.
func Fingerprint(messages []model.Message, modelID string, temperature, topP float64) string {
	req := fingerprintRequest{
		Messages:    make([]fingerprintMessage, len(messages)),
		Model:       modelID,
		Temperature: temperature,
		TopP:        topP,
	}
	for i, msg := range messages {
		req.Messages[i] = fingerprintMessage{Role: msg.Role, Content: msg.Content}
	}

	// Struct field order fixes the JSON key order, so marshaling is canonical.
	data, err := json.Marshal(req)
	if err != nil {
		// Marshaling plain strings and floats cannot fail.
		panic(fmt.Sprintf("cache: fingerprint marshal: %v", err))
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store persists completions keyed by fingerprint in sqlite, with an
// in-process TTL cache in front to avoid re-reading the database inside
// a REPL session. Entries have no expiry beyond least-recently-used
// eviction bounded by maxEntries.
type Store struct {
	db         *sql.DB
	mem        *ttlcache.Cache[string, []string]
	maxEntries int
	disabled   bool
}

// NewStore opens (creating if needed) the completion cache database
// under cacheDir.
func NewStore(cacheDir string, maxEntries int) (*Store, error) {
	dbPath := filepath.Join(cacheDir, "completions.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS completions (
		fingerprint TEXT PRIMARY KEY,
		chunks TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		last_used_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	mem := ttlcache.New[string, []string](
		ttlcache.WithTTL[string, []string](memTTL),
		ttlcache.WithCapacity[string, []string](uint64(maxEntries)),
	)
	go mem.Start()

	return &Store{db: db, mem: mem, maxEntries: maxEntries}, nil
}

// SetDisabled turns the store into a pass-through: Lookup always misses
// and Store is a no-op, leaving the request path otherwise unchanged.
func (s *Store) SetDisabled(disabled bool) {
	s.disabled = disabled
}

// Lookup returns the cached chunk sequence for a fingerprint. A hit
// refreshes the entry's recency.
func (s *Store) Lookup(fingerprint string) ([]string, bool) {
	if s.disabled {
		return nil, false
	}

	if item := s.mem.Get(fingerprint); item != nil {
		return item.Value(), true
	}

	var encoded string
	err := s.db.QueryRow(
		"SELECT chunks FROM completions WHERE fingerprint = ?", fingerprint,
	).Scan(&encoded)
	if err != nil {
		return nil, false
	}

	var chunks []string
	if err := json.Unmarshal([]byte(encoded), &chunks); err != nil {
		// Unreadable entry: drop it rather than serve garbage.
		s.db.Exec("DELETE FROM completions WHERE fingerprint = ?", fingerprint)
		return nil, false
	}

	s.db.Exec(
		"UPDATE completions SET last_used_at = ? WHERE fingerprint = ?",
		time.Now(), fingerprint,
	)
	s.mem.Set(fingerprint, chunks, ttlcache.DefaultTTL)

	return chunks, true
}

// Store saves a completed chunk sequence and evicts least recently used
// entries beyond the configured bound.
func (s *Store) Store(fingerprint string, chunks []string) error {
	if s.disabled {
		return nil
	}

	encoded, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO completions (fingerprint, chunks, created_at, last_used_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET chunks = excluded.chunks, last_used_at = excluded.last_used_at`,
		fingerprint, string(encoded), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	s.mem.Set(fingerprint, chunks, ttlcache.DefaultTTL)

	if s.maxEntries > 0 {
		_, err = s.db.Exec(
			`DELETE FROM completions WHERE fingerprint NOT IN (
				SELECT fingerprint FROM completions ORDER BY last_used_at DESC LIMIT ?
			)`, s.maxEntries,
		)
		if err != nil {
			return fmt.Errorf("failed to evict cache entries: %w", err)
		}
	}

	return nil
}

// Close stops the in-process cache and closes the database.
func (s *Store) Close() error {
	s.mem.Stop()
	return s.db.Close()
}
