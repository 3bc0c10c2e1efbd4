package caching

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache stores extracted document text keyed by content hash, so re-runs
// skip expensive PDF/DOCX decoding. Entries are content-addressed: the
// same bytes always map to the same file.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
// A ttl of zero or less means entries never expire.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// entryPath maps a content hash to its cache file. The hash is already
// hex, so it is filesystem-safe as-is.
func (c *Cache) entryPath(contentHash string) string {
	return filepath.Join(c.path, contentHash+".txt")
}

// Get retrieves extracted text from the cache.
// It returns the text and true if the entry is found and not expired.
// Otherwise, it returns "" and false.
func (c *Cache) Get(contentHash string) (string, bool) {
	filePath := c.entryPath(contentHash)

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return "", false // Cache miss
	}

	// Check if expired
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return "", false // Cache miss (expired)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", false // Cache miss (read error)
	}

	return string(data), true // Cache hit
}

// Set adds extracted text to the cache.
func (c *Cache) Set(contentHash, text string) error {
	filePath := c.entryPath(contentHash)
	if err := os.WriteFile(filePath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
