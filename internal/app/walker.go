package app

import (
	"context"
	crand "crypto/rand"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"trustharvest/internal/adapters/observability"
	"trustharvest/internal/domain"
)

// Extractor turns rendered page HTML into that page's raw review records.
type Extractor func(html string) ([]domain.RawRecord, error)

// URLBuilder composes the listing address for a site and 1-based page index.
type URLBuilder func(site string, page int, opts domain.QueryOptions) string

// Harvester drives the page walk: fetch, extract, normalize, accumulate,
// advance. Pages are strictly sequential; accumulation order follows page
// index so output is deterministic.
type Harvester struct {
	fetch   domain.PageFetcher
	extract Extractor
	urlFor  URLBuilder
}

func NewHarvester(fetch domain.PageFetcher, extract Extractor, urlFor URLBuilder) *Harvester {
	return &Harvester{fetch: fetch, extract: extract, urlFor: urlFor}
}

// HarvestResult is the terminal state of one walk. Reviews accumulated
// before a fatal error are preserved; partial results are a valid outcome.
type HarvestResult struct {
	Site       string
	Reviews    []domain.Review
	Pages      int
	Terminated string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r HarvestResult) Summary() domain.HarvestRun {
	return domain.HarvestRun{
		Domain:     r.Site,
		Pages:      r.Pages,
		Reviews:    len(r.Reviews),
		Terminated: r.Terminated,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// Run walks pages from index 1 until one of two independent end signals: a
// definitive no-such-page response, or a page whose extracted record list is
// empty. There is no total-page-count to rely on. onPage, when non-nil, sees
// each page's normalized reviews as they are accumulated.
//
// A non-nil error means the walk ended on a fatal fetch condition; the
// result still carries everything harvested up to that point.
func (h *Harvester) Run(ctx context.Context, site string, opts domain.QueryOptions, onPage func([]domain.Review)) (res HarvestResult, err error) {
	res = HarvestResult{Site: site, StartedAt: time.Now()}
	defer func() { res.FinishedAt = time.Now() }()

	for page := 1; ; page++ {
		pageURL := h.urlFor(site, page, opts)

		html, err := h.fetch.Fetch(ctx, pageURL)
		switch {
		case errors.Is(err, domain.ErrNoSuchPage):
			log.Info().Str("site", site).Int("page", page).Msg("page does not exist, stopping")
			res.Terminated = "no_such_page"
			return res, nil
		case errors.Is(err, domain.ErrUnexpectedRedirect):
			res.Terminated = "redirect"
			return res, err
		case err != nil:
			res.Terminated = "fetch_error"
			return res, err
		}

		raw, err := h.extract(html)
		if err != nil {
			res.Terminated = "fetch_error"
			return res, err
		}
		if len(raw) == 0 {
			res.Terminated = "end_of_data"
			return res, nil
		}

		reviews := MapReviews(raw)
		res.Reviews = append(res.Reviews, reviews...)
		res.Pages = page
		if onPage != nil {
			onPage(reviews)
		}
		observability.ReviewsHarvested.WithLabelValues(site).Add(float64(len(reviews)))
		log.Info().Str("site", site).Int("page", page).Int("count", len(reviews)).Msg("page harvested")

		// Rate-bounding pause before the next page.
		if !pause(ctx, pageDelay()) {
			res.Terminated = "fetch_error"
			return res, ctx.Err()
		}
	}
}

// pageDelay returns a randomized 0.5-1.0s inter-page wait.
func pageDelay() time.Duration {
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 750 * time.Millisecond
	}
	f := float64(b[0]) / 255.0
	return 500*time.Millisecond + time.Duration(f*float64(500*time.Millisecond))
}

func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
