package trustpilot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
)

// Allowed reports whether userAgent may fetch pageURL under the host's
// robots.txt. Harvesting must not start when this returns false.
func Allowed(ctx context.Context, hc *http.Client, pageURL, userAgent string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false, err
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("trustpilot: fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return false, fmt.Errorf("trustpilot: parse robots.txt: %w", err)
	}
	return data.TestAgent(u.Path, userAgent), nil
}
