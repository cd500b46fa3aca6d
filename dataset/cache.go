package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes Load. Entries are keyed on the file's content hash, so an
// edited file is re-prepared while an unchanged one is served from memory.
// Safe for concurrent use.
type Cache struct {
	opts    Options
	entries *lru.Cache[string, *Dataset]
}

// NewCache creates a cache holding at most maxEntries prepared datasets.
func NewCache(opts Options, maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	entries, err := lru.New[string, *Dataset](maxEntries)
	if err != nil {
		// Only a non-positive size fails.
		panic(err)
	}
	return &Cache{opts: opts, entries: entries}
}

// Options returns the preparation options every entry was built with.
func (c *Cache) Options() Options { return c.opts }

// Load returns the prepared dataset for path and whether it came from the
// cache. Preparation errors are not cached.
func (c *Cache) Load(path string) (*Dataset, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	sum := sha256.Sum256(data)
	key := strings.ToLower(filepath.Ext(path)) + ":" + hex.EncodeToString(sum[:])

	if ds, ok := c.entries.Get(key); ok {
		return ds, true, nil
	}

	t, err := decode(path, data)
	if err != nil {
		return nil, false, err
	}
	ds, err := Prepare(t, c.opts)
	if err != nil {
		return nil, false, fmt.Errorf("prepare %s: %w", path, err)
	}
	c.entries.Add(key, ds)
	return ds, false, nil
}

// Len reports the number of cached datasets.
func (c *Cache) Len() int {
	return c.entries.Len()
}
