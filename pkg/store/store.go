// Package store is the client persistent cache: a bounded, mutable
// key-value store remembering fetched objects and search results across
// sessions. Entries do not expire by time; they are evicted by capacity,
// oldest-inserted first.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/astroview/astro-edge/pkg/catalog"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Capacity is the maximum number of cached objects.
	Capacity = 500

	// evictTarget is where eviction stops. The 50-entry buffer avoids
	// evicting on every single insert once at capacity.
	evictTarget = 450

	objectKeyPrefix = "object_"
	indexKey        = "object_index"

	// objectKeyPattern matches object entries only. The underscore must
	// be escaped: bare `_` is a single-character LIKE wildcard and would
	// also match the index key.
	objectKeyPattern = `object\_%`
)

// ErrNotFound indicates the key is not present in the persistent cache.
var ErrNotFound = errors.New("not in persistent cache")

// Config holds the store configuration.
type Config struct {
	Path string
}

// DefaultConfig returns the platform-default cache location.
func DefaultConfig() Config {
	if p := os.Getenv("ASTRO_CACHE_PATH"); p != "" {
		return Config{Path: p}
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Path: filepath.Join(home, ".astroview", "cache.db"),
	}
}

// Store is a sqlite-backed persistent cache. Open at startup, close at
// shutdown, pass by reference; never a global.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the cache database.
func Open(cfg Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	// rowid is the insertion order; upserts keep the original rowid so
	// overwrites do not count as re-insertion.
	schema := `CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetObject returns the cached object for id, or ErrNotFound.
func (s *Store) GetObject(id string) (*catalog.Object, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, objectKeyPrefix+id).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select object: %w", err)
	}

	obj, err := catalog.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("decode cached object: %w", err)
	}
	return obj, nil
}

// PutObject stores obj as a full replacement of any previous entry with
// the same id, then enforces the capacity bound.
func (s *Store) PutObject(obj *catalog.Object) error {
	if obj == nil || obj.ID == "" {
		return fmt.Errorf("object with empty id")
	}

	value, err := obj.Encode()
	if err != nil {
		return fmt.Errorf("encode object: %w", err)
	}

	upsert := `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.Exec(upsert, objectKeyPrefix+obj.ID, value); err != nil {
		return fmt.Errorf("upsert object: %w", err)
	}

	return s.evict()
}

// evict deletes the oldest-inserted objects down to the eviction target
// whenever the count exceeds capacity. Insertion order is the only
// recency signal; reads do not refresh entries.
func (s *Store) evict() error {
	count, err := s.Count()
	if err != nil {
		return err
	}
	if count <= Capacity {
		return nil
	}

	del := `DELETE FROM kv WHERE rowid IN (
		SELECT rowid FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY rowid ASC LIMIT ?
	)`
	if _, err := s.db.Exec(del, objectKeyPattern, count-evictTarget); err != nil {
		return fmt.Errorf("evict oldest entries: %w", err)
	}
	return nil
}

// Count returns the number of cached objects (the index entry excluded).
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key LIKE ? ESCAPE '\'`, objectKeyPattern).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count objects: %w", err)
	}
	return count, nil
}

// Keys returns the cached object ids in insertion order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY rowid ASC`, objectKeyPattern)
	if err != nil {
		return nil, fmt.Errorf("select keys: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		ids = append(ids, key[len(objectKeyPrefix):])
	}
	return ids, rows.Err()
}

// GetIndex returns the cached content index list, or ErrNotFound.
func (s *Store) GetIndex() ([]string, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, indexKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(value, &ids); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return ids, nil
}

// PutIndex replaces the cached content index list. The index entry is
// exempt from capacity accounting and eviction.
func (s *Store) PutIndex(ids []string) error {
	value, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	upsert := `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.Exec(upsert, indexKey, value); err != nil {
		return fmt.Errorf("upsert index: %w", err)
	}
	return nil
}
