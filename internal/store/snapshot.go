package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"verso/internal/logging"
)

// Cache persists the last good value of each store to SQLite so the app can
// paint real data on launch before the first fetch resolves. Payloads are
// JSON; the cache never interprets them.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenCache opens (or creates) the snapshot database at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// NORMAL is safe under WAL and much faster than the FULL default.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.StoreDebug("Snapshot cache open at %s", path)
	return &Cache{db: db}, nil
}

// Save marshals v and upserts it under key.
func (c *Cache) Save(key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %q: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.db.Exec(`
		INSERT INTO snapshots (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		key, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

// save is the write-through hook wired into stores; failures are logged,
// never surfaced, because a dead snapshot cache must not break fetches.
func (c *Cache) save(key string, v interface{}) {
	if err := c.Save(key, v); err != nil {
		logging.Store("%s: snapshot save failed: %v", key, err)
	}
}

// Load reads the snapshot under key into out. The second return is false
// when no snapshot exists.
func (c *Cache) Load(key string, out interface{}) (time.Time, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var payload string
	var savedAt int64
	err := c.db.QueryRow(`SELECT payload, saved_at FROM snapshots WHERE key = ?`, key).
		Scan(&payload, &savedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode snapshot %q: %w", key, err)
	}
	return time.UnixMilli(savedAt), true, nil
}

// Clear removes every snapshot. Called on logout.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.Exec(`DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
