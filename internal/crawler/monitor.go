package crawler

import (
	"context"
	"time"
)

// monitor periodically reports progress and decides when the crawl is
// over. It is the only goroutine that makes the completion decision;
// workers only ever exit, they never declare the crawl done.
func (c *Crawler) monitor(ctx context.Context) {
	ticker := time.NewTicker(c.monitorTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// External cancellation. The monitor still owns completion,
			// so it snapshots whatever was collected before exiting.
			c.frontier.close()
			c.finish()
			return
		case <-ticker.C:
		}

		visited := c.state.visitedCount()

		progress := 0
		if c.maxURLs > 0 {
			progress = min(100, visited*100/c.maxURLs)
		}
		c.observer.OnProgress(progress)

		if c.crawlComplete(visited) {
			c.logger.Info("crawl finished", "visited", visited)
			c.shutdown()
			return
		}
	}
}

// crawlComplete implements the termination rule: the budget is
// exhausted, or the frontier has drained with no worker holding an
// entry. The frontier check covers queue and in-hand entries in a
// single observation, so a worker between pop and process cannot be
// mistaken for idleness.
func (c *Crawler) crawlComplete(visited int) bool {
	if visited >= c.maxURLs {
		return true
	}
	if !c.frontier.idle() {
		return false
	}

	// Drained and nobody processing. Either something was crawled, or
	// every worker already gave up because no fetch ever succeeded.
	return visited > 0 || c.liveWorkers.Load() == 0
}
