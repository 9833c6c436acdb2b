package trustpilot

import (
	"net/url"
	"strconv"

	"trustharvest/internal/domain"
)

// BuildURL composes a listing-page address for a site and 1-based page index.
// Page 1 is the canonical, unparameterized address; absent options emit no
// query component at all. Pure function: the same inputs always yield the
// same string (url.Values encodes keys in sorted order).
func BuildURL(base, site string, page int, opts domain.QueryOptions) string {
	v := url.Values{}
	for _, s := range opts.Stars {
		v.Add("stars", strconv.Itoa(s))
	}
	if opts.DateWindow != "" {
		v.Set("date", opts.DateWindow)
	}
	if opts.Search != "" {
		v.Set("search", opts.Search)
	}
	if opts.Languages != "" {
		v.Set("languages", opts.Languages)
	}
	if opts.VerifiedOnly {
		v.Set("verified", "true")
	}
	if opts.RepliesOnly {
		v.Set("replies", "true")
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}

	u := base + "/" + site
	if enc := v.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}
