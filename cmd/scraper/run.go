package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	redisad "trustharvest/internal/adapters/redis"
	"trustharvest/internal/adapters/sink"
	"trustharvest/internal/adapters/trustpilot"
	"trustharvest/internal/analysis"
	"trustharvest/internal/app"
	"trustharvest/internal/domain"
	"trustharvest/internal/shared"
	mysqlrepo "trustharvest/internal/storage/mysql"
)

// run harvests every requested domain, at most fl.workers at a time. Pages
// within a domain stay strictly sequential; the static session's limiter is
// shared so the global inter-request spacing holds across domains too.
func run(ctx context.Context, cfg shared.Config, fl flags, sites []string) error {
	ua := cfg.UserAgent
	if ua == "" {
		ua = browser.Random()
	}

	var fetch domain.PageFetcher
	if fl.dynamic {
		fetch = trustpilot.NewDynamicFetcher(ua, cfg.WaitTimeout, cfg.PageTimeout)
	} else {
		fetch = trustpilot.NewSession(ua, cfg.MinInterval, fl.retry)
	}

	if fl.cache {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		fetch = redisad.NewFetchCache(fetch, cache, int(cfg.PageCacheTTL.Seconds()))
	}

	var repo domain.ReviewRepository
	if fl.store {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("mysql ping: %w", err)
		}
		repo = mysqlrepo.NewRepo(db)
	}

	hc := &http.Client{Timeout: 20 * time.Second}
	h := app.NewHarvester(fetch, trustpilot.Records, func(site string, page int, opts domain.QueryOptions) string {
		return trustpilot.BuildURL(cfg.BaseURL, site, page, opts)
	})

	sem := semaphore.NewWeighted(int64(fl.workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, site := range sites {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func(site string) {
			defer wg.Done()
			defer sem.Release(1)
			if err := harvestSite(ctx, cfg, fl, h, hc, ua, repo, site); err != nil {
				log.Error().Err(err).Str("site", site).Msg("harvest failed")
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(site)
	}
	wg.Wait()
	return firstErr
}

func harvestSite(ctx context.Context, cfg shared.Config, fl flags, h *app.Harvester, hc *http.Client, ua string, repo domain.ReviewRepository, site string) error {
	opts := fl.queryOptions()

	firstPage := trustpilot.BuildURL(cfg.BaseURL, site, 1, opts)
	allowed, err := trustpilot.Allowed(ctx, hc, firstPage, ua)
	if err != nil {
		log.Warn().Err(err).Str("site", site).Msg("robots.txt unavailable, proceeding")
	} else if !allowed {
		return fmt.Errorf("robots.txt disallows fetching %s", firstPage)
	}

	kw := analysis.NewKeywordAccumulator()
	buckets := analysis.NewLocationBuckets()
	onPage := func(rs []domain.Review) {
		buckets.Add(rs)
		if fl.analyze {
			for _, r := range rs {
				kw.Add(r)
			}
		}
	}

	res, runErr := h.Run(ctx, site, opts, onPage)
	if runErr != nil {
		// partial results are still written below
		log.Warn().Err(runErr).Str("site", site).Int("reviews", len(res.Reviews)).Msg("harvest ended early")
	}

	reviews := app.SortReviews(res.Reviews, fl.sortSpec())
	if len(reviews) == 0 {
		fmt.Println("No reviews scraped.")
		return runErr
	}

	if repo != nil {
		if err := repo.UpsertReviews(ctx, site, reviews); err != nil {
			return err
		}
		if err := repo.LogRun(ctx, res.Summary()); err != nil {
			return err
		}
		log.Info().Str("site", site).Int("reviews", len(reviews)).Msg("stored harvest")
	}

	if fl.output == "csv" || fl.output == "both" {
		path := site + ".csv"
		if err := sink.WriteCSVFile(path, reviews); err != nil {
			return err
		}
		fmt.Printf("Wrote %d reviews to %s\n", len(reviews), path)
	}
	if fl.output == "json" || fl.output == "both" {
		path := site + ".json"
		if err := sink.WriteJSONFile(path, reviews); err != nil {
			return err
		}
		fmt.Printf("Wrote %d reviews to %s\n", len(reviews), path)
	}

	// Analysis and visualization read the same immutable slice, so they can
	// overlap once the harvest is done.
	var (
		wg                    sync.WaitGroup
		correlations          []analysis.Correlation
		keywordErr, chartsErr error
	)
	if fl.analyze {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keywordErr = sink.WriteKeywordStatsFile(site+"_keywords.csv", kw.Stats())
			correlations = analysis.Correlate(reviews)
		}()
	}
	if fl.visualize {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chartsErr = sink.WriteCharts(filepath.Join("charts", site), buckets.Summaries())
		}()
	}
	wg.Wait()

	if fl.analyze {
		if keywordErr != nil {
			return keywordErr
		}
		fmt.Printf("Wrote keyword analysis to %s\n", site+"_keywords.csv")
		printCorrelations(site, correlations)
	}
	if fl.visualize {
		if chartsErr != nil {
			return chartsErr
		}
		fmt.Printf("Wrote charts to %s\n", filepath.Join("charts", site))
	}

	return runErr
}

func printCorrelations(site string, cs []analysis.Correlation) {
	if len(cs) == 0 {
		fmt.Printf("Not enough reviews for %s to correlate keywords with ratings.\n", site)
		return
	}
	fmt.Printf("Top keyword correlations with rating for %s:\n", site)
	for _, c := range cs {
		if analysis.Significant(c) {
			fmt.Printf("  %-20s r=%+.3f (%s) p=%.3g %s\n",
				c.Keyword, c.R, analysis.StrengthBand(c.R), c.P, analysis.SignificanceBand(c.P))
		} else {
			fmt.Printf("  %-20s r=%+.3f p=%.3g (not significant)\n", c.Keyword, c.R, c.P)
		}
	}
}
