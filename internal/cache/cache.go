package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for the page fetch cache. Verification results
// are never cached; only fetched pages are.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a page URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "intercept:v1:" + hex.EncodeToString(hash[:])
}
