package domain

import "errors"

var (
	// ErrNoSuchPage signals a definitive 404 for a listing page. It is the
	// normal end of pagination, not a failure.
	ErrNoSuchPage = errors.New("trustharvest: no such page")

	// ErrUnexpectedRedirect is raised when a response lands on a URL whose
	// query parameters differ from the multi-parameter set we requested.
	// This is a heuristic proxy for an anti-scraping redirect and is known
	// to over-approximate: a legitimate redirect that rewrites filter
	// parameters also trips it. It aborts the whole run, never a single page.
	ErrUnexpectedRedirect = errors.New("trustharvest: unexpected redirect")

	// ErrRenderTimeout means the dynamic fetcher exhausted its attempts
	// waiting for the review list to render.
	ErrRenderTimeout = errors.New("trustharvest: render timeout")

	// ErrNotFound is returned by read paths when a domain has no stored
	// reviews.
	ErrNotFound = errors.New("trustharvest: not found")
)
