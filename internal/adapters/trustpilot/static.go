package trustpilot

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"trustharvest/internal/adapters/observability"
	"trustharvest/internal/domain"
)

const staticAttempts = 3

// Session performs static page fetches over one shared HTTP client. The
// user-agent is randomized once at construction and reused for every request
// in the run, and a shared limiter enforces a minimum inter-request spacing.
type Session struct {
	hc    *http.Client
	ua    string
	rl    *rate.Limiter
	retry bool
}

// NewSession builds a run-scoped session. An empty userAgent picks a random
// browser user-agent. minInterval is the global minimum spacing between
// outbound requests; retry enables the bounded retry wrapper around each
// fetch.
func NewSession(userAgent string, minInterval time.Duration, retry bool) *Session {
	if userAgent == "" {
		userAgent = browser.Random()
	}
	if minInterval <= 0 {
		minInterval = 500 * time.Millisecond
	}
	return &Session{
		hc:    &http.Client{Timeout: 20 * time.Second},
		ua:    userAgent,
		rl:    rate.NewLimiter(rate.Every(minInterval), 1),
		retry: retry,
	}
}

func (s *Session) UserAgent() string { return s.ua }

// Fetch retrieves one listing page. A definitive 404 maps to ErrNoSuchPage;
// a redirect off the requested filtered view maps to ErrUnexpectedRedirect
// and is never retried. With retry enabled, transport faults and non-2xx
// statuses get up to three attempts separated by a randomized 1-3s delay.
func (s *Session) Fetch(ctx context.Context, pageURL string) (string, error) {
	attempts := 1
	if s.retry {
		attempts = staticAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := s.rl.Wait(ctx); err != nil {
			return "", err
		}

		start := time.Now()
		html, err := s.do(ctx, pageURL)
		observability.ObserveFetch("static", fetchResult(err), time.Since(start))

		switch {
		case err == nil:
			return html, nil
		case errors.Is(err, domain.ErrNoSuchPage),
			errors.Is(err, domain.ErrUnexpectedRedirect):
			return "", err
		}

		lastErr = err
		if i < attempts-1 {
			log.Warn().Err(err).Str("url", pageURL).
				Int("attempt", i+1).Int("max", attempts).
				Msg("static fetch failed, retrying")
			if !sleepCtx(ctx, retryDelay()) {
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

func (s *Session) do(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.ua)
	req.Header.Set("Accept", "text/html")

	resp, err := s.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("trustpilot: transport: %w", err)
	}
	defer resp.Body.Close()

	// resp.Request reflects the final URL after any redirect chain.
	if err := checkRedirect(pageURL, resp.Request.URL); err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("trustpilot: read body: %w", err)
		}
		return string(b), nil
	case http.StatusNotFound:
		return "", domain.ErrNoSuchPage
	default:
		return "", fmt.Errorf("trustpilot: bad status %d for %s", resp.StatusCode, pageURL)
	}
}

// checkRedirect flags a response that landed on a different query-parameter
// set than the one requested, provided the request carried more than one
// parameter. A single-parameter mismatch is tolerated because the site
// normalizes bare listing URLs freely.
func checkRedirect(initial string, final *url.URL) error {
	iu, err := url.Parse(initial)
	if err != nil {
		return nil
	}
	ip, fp := iu.Query(), final.Query()
	if len(ip) > 1 && !queryEqual(ip, fp) {
		return fmt.Errorf("%w: landed on %s", domain.ErrUnexpectedRedirect, final)
	}
	return nil
}

func queryEqual(a, b url.Values) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || len(av) != len(bv) {
			return false
		}
		as, bs := append([]string(nil), av...), append([]string(nil), bv...)
		sort.Strings(as)
		sort.Strings(bs)
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
	}
	return true
}

func fetchResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoSuchPage):
		return "no_such_page"
	default:
		return "error"
	}
}

// retryDelay returns a randomized 1-3s wait between failed attempts.
func retryDelay() time.Duration {
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 2 * time.Second
	}
	f := float64(b[0]) / 255.0
	return time.Second + time.Duration(f*float64(2*time.Second))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
