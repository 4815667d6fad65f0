// Package caching provides a file-based cache for fetched raw pages, so
// the format command can re-normalize content without network access and
// re-runs inside the TTL skip refetching.
package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gnoverse/knowscrape/models"
)

// MissError reports a cache-only lookup that found nothing, which fails
// the item at the fetch stage.
type MissError struct {
	Identifier string
}

func (e *MissError) Error() string {
	return fmt.Sprintf("no cached raw page for %s", e.Identifier)
}

// Cache stores raw page bytes keyed by source item, with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a cache rooted at path. The directory is created if it
// doesn't exist. A zero or negative ttl means entries never expire.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{path: path, ttl: ttl}, nil
}

// key hashes category and identifier into a stable filename.
func (c *Cache) key(item models.SourceItem) string {
	hash := sha256.Sum256([]byte(string(item.Category) + "\n" + item.Identifier))
	return fmt.Sprintf("%x", hash)
}

// Get retrieves a cached raw page. Returns false on a miss or when the
// entry has expired.
func (c *Cache) Get(item models.SourceItem) (*models.RawPage, bool) {
	filePath := filepath.Join(c.path, c.key(item))

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	return &models.RawPage{
		Item:        item,
		Content:     data,
		ContentType: contentTypeFor(item.Category),
	}, true
}

// Set stores a raw page's content bytes.
func (c *Cache) Set(page *models.RawPage) error {
	filePath := filepath.Join(c.path, c.key(page.Item))
	if err := os.WriteFile(filePath, page.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// contentTypeFor reconstructs the content type lost by the byte-only cache.
func contentTypeFor(cat models.Category) string {
	if cat == models.CategoryDoc {
		return "text/markdown"
	}
	return "text/html"
}
