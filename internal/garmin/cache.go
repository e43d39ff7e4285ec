// ABOUTME: Badger-backed response cache for the Garmin Connect API.
// ABOUTME: Entries expire so re-fetches pick up late-arriving corrections.
package garmin

import (
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
)

// cacheTTL keeps responses for a day; Garmin occasionally revises
// activity summaries shortly after upload.
const cacheTTL = 24 * time.Hour

// Cache stores raw API response bodies keyed by request path.
type Cache struct {
	db *badger.DB
}

// OpenCache opens (or creates) a cache at dir.
func OpenCache(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns a cached response body, if present and unexpired.
func (c *Cache) Get(key string) ([]byte, bool) {
	var body []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores a response body. Cache failures are ignored: the cache is
// an optimization, never a source of truth.
func (c *Cache) Set(key string, body []byte) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), body).WithTTL(cacheTTL)
		return txn.SetEntry(entry)
	})
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}
