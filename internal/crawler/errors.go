package crawler

import "errors"

var (
	// ErrInvalidSeedURL is returned by Start when the seed cannot be
	// parsed as a URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL")

	// ErrSeedUnreachable is returned by Start when the preliminary
	// reachability check against the seed fails. No crawl is started.
	ErrSeedUnreachable = errors.New("seed URL is unreachable")

	// ErrCrawlerRunning is returned by Start when this Crawler has
	// already been started. A Crawler runs at most one crawl.
	ErrCrawlerRunning = errors.New("crawler already started")
)
