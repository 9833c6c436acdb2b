package redisad

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"trustharvest/internal/domain"
)

// FetchCache is a read-through page cache around a PageFetcher: repeated
// runs against an unchanged listing skip the network entirely. Fetch errors
// are never cached.
type FetchCache struct {
	next   domain.PageFetcher
	cache  domain.Cache
	ttlSec int
}

func NewFetchCache(next domain.PageFetcher, cache domain.Cache, ttlSec int) *FetchCache {
	return &FetchCache{next: next, cache: cache, ttlSec: ttlSec}
}

func (f *FetchCache) Fetch(ctx context.Context, pageURL string) (string, error) {
	key := pageKey(pageURL)
	var html string
	if ok, err := f.cache.Get(ctx, key, &html); err == nil && ok {
		return html, nil
	}

	html, err := f.next.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	_ = f.cache.Set(ctx, key, html, f.ttlSec)
	return html, nil
}

func pageKey(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return "page:" + hex.EncodeToString(sum[:])
}
