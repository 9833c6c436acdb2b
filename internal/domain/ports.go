package domain

import "context"

// RawRecord is one review as embedded in the listing page's data blob. Its
// shape is externally defined; any key may be missing.
type RawRecord = map[string]any

// PageFetcher returns the rendered HTML of a listing page. Implementations
// must return ErrNoSuchPage (possibly wrapped) for a definitive 404 and
// ErrUnexpectedRedirect when the response lands off the requested view.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ReviewRepository is the persistence port for harvested reviews.
type ReviewRepository interface {
	UpsertReviews(ctx context.Context, site string, rs []Review) error
	LogRun(ctx context.Context, run HarvestRun) error

	ListReviews(ctx context.Context, site string, limit int) ([]Review, error)
	LocationSummary(ctx context.Context, site string) ([]LocationSummary, error)
}

// Cache is a generic TTL'd key-value cache (Redis in production).
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
