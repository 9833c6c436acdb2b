package trustpilot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"trustharvest/internal/adapters/observability"
	"trustharvest/internal/domain"
)

// reviewListSelector is the container the rendered page must produce before
// scrolling starts.
const reviewListSelector = ".review-list"

const (
	dynamicAttempts   = 3
	dynamicRetryDelay = 2 * time.Second
	scrollSettle      = 2 * time.Second
)

// DynamicFetcher retrieves pages through a headless browser, scrolling until
// the document height stabilizes so lazy-loaded reviews are present in the
// returned HTML. Each attempt owns a fresh browser session that is released
// before the attempt returns, success or not.
type DynamicFetcher struct {
	ua          string
	waitTimeout time.Duration // wait for the review list to appear
	pageTimeout time.Duration // whole render including scrolling
}

func NewDynamicFetcher(userAgent string, waitTimeout, pageTimeout time.Duration) *DynamicFetcher {
	if waitTimeout <= 0 {
		waitTimeout = 10 * time.Second
	}
	if pageTimeout <= 0 {
		pageTimeout = 60 * time.Second
	}
	return &DynamicFetcher{ua: userAgent, waitTimeout: waitTimeout, pageTimeout: pageTimeout}
}

// Fetch renders pageURL, retrying up to three times with a constant delay and
// a recreated browser session per attempt. Exhausting all attempts reports a
// render failure rather than silently returning an empty page.
func (f *DynamicFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var lastErr error
	for i := 0; i < dynamicAttempts; i++ {
		start := time.Now()
		html, err := f.fetchOnce(ctx, pageURL)
		observability.ObserveFetch("dynamic", fetchResult(err), time.Since(start))
		if err == nil {
			return html, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("url", pageURL).
			Int("attempt", i+1).Int("max", dynamicAttempts).
			Msg("dynamic fetch failed")
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if i < dynamicAttempts-1 && !sleepCtx(ctx, dynamicRetryDelay) {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", domain.ErrRenderTimeout, dynamicAttempts, lastErr)
}

func (f *DynamicFetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(f.ua),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelPage := context.WithTimeout(taskCtx, f.pageTimeout)
	defer cancelPage()

	// Bounded wait for the review list; the page timeout still caps the rest.
	waitCtx, cancelWait := context.WithTimeout(taskCtx, f.waitTimeout)
	err := chromedp.Run(waitCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(reviewListSelector, chromedp.ByQuery),
	)
	cancelWait()
	if err != nil {
		return "", fmt.Errorf("wait for %q: %w", reviewListSelector, err)
	}

	// Scroll until the document stops growing (lazy loading exhausted).
	var last, cur int64
	if err := chromedp.Run(taskCtx,
		chromedp.Evaluate(`document.body.scrollHeight`, &last),
	); err != nil {
		return "", err
	}
	for {
		if err := chromedp.Run(taskCtx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(scrollSettle),
			chromedp.Evaluate(`document.body.scrollHeight`, &cur),
		); err != nil {
			return "", err
		}
		if cur == last {
			break
		}
		last = cur
	}

	var html string
	if err := chromedp.Run(taskCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", err
	}
	return html, nil
}
