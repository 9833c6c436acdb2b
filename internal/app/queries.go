package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trustharvest/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListReviews(ctx context.Context, site string, limit int) ([]domain.Review, error) {
	key := fmt.Sprintf("reviews:%s:%d", site, limit)
	var out []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListReviews(ctx, site, limit)
	if err != nil {
		return nil, err
	}

	// copy before caching so callers can't mutate the cached value
	cp := make([]domain.Review, len(rs))
	copy(cp, rs)

	// optional size guard
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func (s *QueryService) LocationSummary(ctx context.Context, site string) ([]domain.LocationSummary, error) {
	key := fmt.Sprintf("summary:%s", site)
	var out []domain.LocationSummary
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	ss, err := s.repo.LocationSummary(ctx, site)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, ss, int(s.cacheTTL.Seconds()))
	return ss, nil
}
