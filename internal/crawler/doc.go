// Package crawler provides concurrent, bounded web crawling.
//
// # Architecture
//
// The crawler package is designed around the Crawler type, which
// coordinates a fixed pool of workers over a shared frontier. Workers
// pop URLs, fetch and parse them, and push newly discovered links back;
// a monitor goroutine reports progress and owns the single decision
// that the crawl is complete.
//
// Design decision: We implement our own crawl engine rather than using
// a third-party framework because:
//  1. Resource bounds (page budget, depth, body size) must be exact,
//     not best-effort
//  2. We need tight control over per-origin request spacing to avoid
//     overwhelming small sites
//  3. Termination has subtle edge cases (empty frontier with entries
//     still in a worker's hands) best handled explicitly
//  4. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Crawler: coordinates the worker pool, the monitor, and lifecycle
//   - frontier: URL queue with deduplication and depth tracking
//   - state: visited set, in-flight claims, and collected results
//   - Parser: HTML parser that extracts links, titles, and assets
//   - Fetcher: HTTP collaborator, replaceable in tests
//
// # Bounds
//
// Every crawl is bounded:
//   - At most MaxURLs pages are ever visited
//   - Links are followed at most MaxDepth hops from the seed
//   - Requests to one origin are spaced at least RequestInterval apart
//   - Response bodies are truncated at a fixed size limit
//
// # Usage
//
//	c := crawler.New(crawler.WithMaxURLs(50), crawler.WithMaxDepth(2))
//	result, err := c.Crawl(ctx, "https://example.com")
//
// # Security Considerations
//
// The crawler is deliberately conservative:
//   - Only http and https URLs are ever fetched
//   - Off-domain links are recorded, not followed, by default
//   - Known binary extensions are classified without a fetch
//   - Timeouts and body limits prevent hanging on hostile servers
package crawler
