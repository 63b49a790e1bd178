// Package llm talks to the remote chat completion endpoint that performs
// the actual code transformation. Failures come back as a typed *Error so
// the caller can decide whether to fall back, abort, or surface them; the
// client itself never retries and never substitutes content.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Client is a chat completion client. Implementations must be safe for
// concurrent use: the upgrade driver calls Complete from every worker.
type Client interface {
	// Complete sends a system and user message and returns the first
	// choice's text content.
	Complete(ctx context.Context, system, user string) (string, error)

	// Model returns the model or deployment identifier in use.
	Model() string

	// Close releases any resources held by the client.
	Close() error
}

// Cache is an LRU cache of completion responses keyed by prompt hash.
// Large codebases repeat boilerplate files; identical chunks are
// answered once.
type Cache struct {
	cache *lru.Cache[string, string]
}

// DefaultCacheSize bounds the response cache when no size is configured.
const DefaultCacheSize = 1024

// NewCache creates a response cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, string](maxLen)
	if err != nil {
		cache, _ = lru.New[string, string](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get retrieves a cached response.
func (c *Cache) Get(key string) (string, bool) {
	return c.cache.Get(key)
}

// Set stores a response; eviction is automatic at capacity.
func (c *Cache) Set(key, resp string) {
	c.cache.Add(key, resp)
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// PromptKey derives the cache key for a system+user message pair.
func PromptKey(system, user string) string {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}
