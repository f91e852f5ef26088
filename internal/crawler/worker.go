package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// worker is the fetch-and-extract loop. It exits when the context is
// canceled, the page budget is reached, or an idle wait on the frontier
// times out while no other worker holds an entry (nobody is left to
// refill the queue).
func (c *Crawler) worker(ctx context.Context, id int) {
	defer c.liveWorkers.Add(-1)

	logger := c.logger.With("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if c.state.visitedCount() >= c.maxURLs {
			return
		}

		e, ok := c.frontier.pop(c.popTimeout)
		if !ok {
			if c.frontier.activeCount() == 0 {
				return
			}
			continue
		}

		c.process(ctx, logger, e)
	}
}

// process runs one frontier entry through the full pipeline: claim,
// rate limit, scope gate, classify or fetch, extract, release. Failures
// are recorded and the entry is abandoned; they never take the worker
// down and nothing is retried.
func (c *Crawler) process(ctx context.Context, logger *slog.Logger, e entry) {
	defer c.frontier.done()

	if !c.state.claim(e.url) {
		return
	}
	defer c.state.release(e.url)

	if err := c.limiter.wait(ctx, e.url); err != nil {
		// Canceled during the politeness wait.
		return
	}

	u, err := url.Parse(e.url)
	if err != nil {
		logger.Debug("dropping unparseable URL", "url", e.url)
		return
	}

	// URLs rejected by scheme or scope are recorded, never fetched.
	if u.Scheme != "http" && u.Scheme != "https" {
		c.state.addExternal(e.url)
		return
	}
	if c.stayWithinDomain && !strings.EqualFold(u.Host, c.seedHost) {
		c.state.addExternal(e.url)
		return
	}

	// Binary resources classify by extension alone, without a fetch.
	if isBinaryResource(e.url) {
		c.state.addResource(classifyResource(e.url, ""), e.url)
		return
	}

	logger.Debug("fetching", "url", e.url, "depth", e.depth)

	resp, err := c.fetcher.Fetch(ctx, e.url)
	if err != nil {
		logger.Debug("fetch failed", "url", e.url, "error", err)
		return
	}

	c.state.setStatus(e.url, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("skipping non-2xx response", "url", e.url, "status", resp.StatusCode)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContent(contentType) {
		c.state.addResource(classifyResource(e.url, contentType), e.url)
		return
	}

	parser, err := NewParser(e.url)
	if err != nil {
		return
	}
	parsed, err := parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		logger.Debug("parse failed", "url", e.url, "error", err)
		return
	}

	if !c.state.markVisited(e.url) {
		// The budget filled while this fetch was in flight.
		return
	}
	if parsed.Title != "" {
		c.state.setTitle(e.url, parsed.Title)
	}
	c.observer.OnURLDiscovered(e.url)

	if e.depth < c.maxDepth {
		c.pushAnchors(parsed.Anchors, e.depth+1)
	}

	// Resources are recorded unconditionally, even at the depth bound:
	// following a link is a traversal decision, noting an asset is not.
	c.collectResources(parsed)
}

// pushAnchors classifies each anchor by origin and feeds the frontier.
// External links are recorded when scoping is on and queued like any
// other link when it is off.
func (c *Crawler) pushAnchors(anchors []string, depth int) {
	for _, link := range anchors {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}

		if c.stayWithinDomain && !strings.EqualFold(u.Host, c.seedHost) {
			c.state.addExternal(link)
			continue
		}
		c.frontier.push(link, depth)
	}
}

// collectResources records the page's asset references by kind.
func (c *Crawler) collectResources(parsed *ParseResult) {
	for _, u := range parsed.Images {
		c.state.addResource(kindImage, u)
	}
	for _, u := range parsed.Scripts {
		c.state.addResource(kindScript, u)
	}
	for _, u := range parsed.Stylesheets {
		c.state.addResource(kindStylesheet, u)
	}
	for _, u := range parsed.Documents {
		c.state.addResource(kindDocument, u)
	}
}
