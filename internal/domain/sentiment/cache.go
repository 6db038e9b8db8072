package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sajal133/truerate-api/pkg/metrics"
)

// DefaultCacheSize is used when NewCached gets a non-positive size.
const DefaultCacheSize = 4096

// CachedAnalyzer memoises another Analyzer by text digest.
type CachedAnalyzer struct {
	next  Analyzer
	cache *lru.Cache[string, Result]
}

// NewCached wraps next with an LRU of size entries.
func NewCached(next Analyzer, size int) (*CachedAnalyzer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Result](size)
	if err != nil {
		return nil, err
	}
	return &CachedAnalyzer{next: next, cache: c}, nil
}

// Analyze implements Analyzer. Errors are not cached.
func (c *CachedAnalyzer) Analyze(ctx context.Context, text string) (Result, error) {
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])
	if r, ok := c.cache.Get(key); ok {
		metrics.RecordSentimentCacheHit()
		return r, nil
	}
	metrics.RecordSentimentCacheMiss()
	r, err := c.next.Analyze(ctx, text)
	if err != nil {
		return Result{}, err
	}
	c.cache.Add(key, r)
	return r, nil
}

// Len returns the number of cached entries.
func (c *CachedAnalyzer) Len() int { return c.cache.Len() }
