package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults for a crawl. The worker pool is intentionally small; it is a
// politeness control, not a performance knob.
const (
	defaultMaxURLs         = 100
	defaultMaxDepth        = 3
	defaultWorkerCount     = 3
	defaultRequestInterval = 1 * time.Second
	defaultFetchTimeout    = 10 * time.Second
	defaultMaxBodySize     = 5 * 1024 * 1024 // 5MB

	// defaultPopTimeout bounds how long an idle worker blocks on the
	// frontier before re-checking whether the crawl is over.
	defaultPopTimeout = 2 * time.Second

	// defaultMonitorTick is how often the monitor re-evaluates progress
	// and termination.
	defaultMonitorTick = 500 * time.Millisecond

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// stopWaitTimeout bounds how long Stop waits for goroutines before
	// forcing the final snapshot.
	stopWaitTimeout = 2 * time.Second
)

// Crawler walks a site from a seed URL under a page budget, a depth
// bound, and per-origin rate limits. A fixed pool of workers drains the
// frontier while a monitor owns progress reporting and the completion
// decision.
//
// A Crawler runs at most one crawl; create a new one for each crawl.
//
// Design decision: Workers and the monitor share state only through the
// frontier and the crawl state, both synchronized internally, because:
//  1. Claim, release, push, and pop stay short and atomic; no lock is
//     ever held across a network wait
//  2. The monitor can read aggregate counts without stopping the pool
//  3. Completion is decided in exactly one place
type Crawler struct {
	maxURLs          int
	maxDepth         int
	stayWithinDomain bool
	workerCount      int
	requestInterval  time.Duration
	fetchTimeout     time.Duration
	userAgent        string

	fetcher  Fetcher
	observer Observer
	logger   *slog.Logger

	// popTimeout and monitorTick are defaults here; tests shorten them.
	popTimeout  time.Duration
	monitorTick time.Duration

	mu       sync.Mutex
	started  bool
	seedHost string
	cancel   context.CancelFunc

	frontier *frontier
	state    *state
	limiter  *originLimiter

	wg          sync.WaitGroup
	liveWorkers atomic.Int32

	finishOnce sync.Once
	done       chan struct{}
	result     atomic.Pointer[Result]
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxURLs sets the page budget: the crawl stops once this many
// pages have been visited.
func WithMaxURLs(n int) Option {
	return func(c *Crawler) {
		c.maxURLs = n
	}
}

// WithMaxDepth sets the traversal bound. 0 crawls only the seed page;
// pages at the bound are still fetched, but their links are not
// followed.
func WithMaxDepth(n int) Option {
	return func(c *Crawler) {
		c.maxDepth = n
	}
}

// WithStayWithinDomain controls domain scoping. When true (the
// default), links leaving the seed host are recorded as external and
// never fetched.
func WithStayWithinDomain(stay bool) Option {
	return func(c *Crawler) {
		c.stayWithinDomain = stay
	}
}

// WithWorkerCount sets the size of the worker pool.
func WithWorkerCount(n int) Option {
	return func(c *Crawler) {
		c.workerCount = n
	}
}

// WithRequestInterval sets the minimum spacing between requests to the
// same origin. Zero disables rate limiting.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Crawler) {
		c.requestInterval = d
	}
}

// WithCrawlerFetchTimeout sets the per-request timeout used when the
// Crawler builds its own fetcher.
func WithCrawlerFetchTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		c.fetchTimeout = d
	}
}

// WithUserAgent sets the User-Agent used when the Crawler builds its
// own fetcher.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		c.userAgent = ua
	}
}

// WithFetcher replaces the HTTP collaborator. Tests use this to crawl
// synthetic sites.
func WithFetcher(f Fetcher) Option {
	return func(c *Crawler) {
		c.fetcher = f
	}
}

// WithObserver sets the notification sink.
func WithObserver(o Observer) Option {
	return func(c *Crawler) {
		c.observer = o
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = l
	}
}

// New creates a Crawler with the given options. The zero configuration
// crawls up to 100 pages, 3 levels deep, with 3 workers, staying on the
// seed's host, one request per origin per second.
func New(opts ...Option) *Crawler {
	c := &Crawler{
		maxURLs:          defaultMaxURLs,
		maxDepth:         defaultMaxDepth,
		stayWithinDomain: true,
		workerCount:      defaultWorkerCount,
		requestInterval:  defaultRequestInterval,
		fetchTimeout:     defaultFetchTimeout,
		userAgent:        defaultUserAgent,
		observer:         NopObserver{},
		logger:           slog.Default(),
		popTimeout:       defaultPopTimeout,
		monitorTick:      defaultMonitorTick,
		done:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.fetcher == nil {
		c.fetcher = NewHTTPFetcher(
			WithFetchTimeout(c.fetchTimeout),
			WithFetcherUserAgent(c.userAgent),
		)
	}

	return c
}

// Start validates the seed, verifies it answers at all, and launches
// the worker pool and the monitor. It returns once the crawl is
// running; completion is observed through Done, Result, or the
// Observer. A seed that cannot be reached fails fast with
// ErrSeedUnreachable and no crawl begins.
func (c *Crawler) Start(ctx context.Context, seed string) (err error) {
	normalized, host, err := c.normalizeSeed(seed)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrCrawlerRunning
	}
	c.started = true
	c.mu.Unlock()

	// Roll back on failure so the caller may fix the seed and retry.
	defer func() {
		if err != nil {
			c.mu.Lock()
			c.started = false
			c.mu.Unlock()
		}
	}()

	headCtx, headCancel := context.WithTimeout(ctx, c.fetchTimeout)
	resp, herr := c.fetcher.Head(headCtx, normalized)
	headCancel()
	if herr != nil {
		return fmt.Errorf("%w: %v", ErrSeedUnreachable, herr)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: seed returned status %d", ErrSeedUnreachable, resp.StatusCode)
	}

	crawlCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.seedHost = host
	c.frontier = newFrontier()
	c.state = newState(c.maxURLs)
	c.limiter = newOriginLimiter(c.requestInterval)
	c.mu.Unlock()

	c.frontier.push(normalized, 0)

	c.logger.Info("starting crawl",
		"seed", normalized,
		"max_urls", c.maxURLs,
		"max_depth", c.maxDepth,
		"stay_within_domain", c.stayWithinDomain,
		"workers", c.workerCount,
	)

	c.liveWorkers.Store(int32(c.workerCount))
	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go func(id int) {
			defer c.wg.Done()
			c.worker(crawlCtx, id)
		}(i)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.monitor(crawlCtx)
	}()

	return nil
}

// Stop cancels the crawl cooperatively and waits, bounded, for the pool
// and monitor to exit. A final snapshot and completion signal are
// produced regardless of whether the wait succeeded. Stop on a Crawler
// that never started is a no-op.
func (c *Crawler) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	c.frontier.close()

	exited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(stopWaitTimeout):
		c.logger.Warn("crawl goroutines did not exit before the stop deadline")
	}

	c.finish()
}

// Crawl runs a complete crawl synchronously: Start, then wait for
// completion or context cancellation. Cancellation is not an error; the
// partial result is returned.
func (c *Crawler) Crawl(ctx context.Context, seed string) (*Result, error) {
	if err := c.Start(ctx, seed); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.Stop()
		return c.Result(), nil
	case <-c.done:
		return c.Result(), nil
	}
}

// Done returns a channel closed when the crawl has completed and the
// result is available.
func (c *Crawler) Done() <-chan struct{} {
	return c.done
}

// Result returns the final result, or nil while the crawl is still
// running.
func (c *Crawler) Result() *Result {
	return c.result.Load()
}

// finish snapshots the state and signals completion exactly once,
// regardless of how many paths race to it.
func (c *Crawler) finish() {
	c.finishOnce.Do(func() {
		res := c.state.snapshot(c.frontier.seenURLs())
		c.result.Store(res)
		c.observer.OnComplete(res)
		close(c.done)

		c.logger.Info("crawl complete",
			"visited", len(res.VisitedURLs),
			"discovered", len(res.DiscoveredURLs),
			"external", len(res.ExternalLinks),
			"resources", res.TotalResources(),
		)
	})
}

// shutdown cancels the pool and emits the completion snapshot. Called
// by the monitor when the termination condition holds.
func (c *Crawler) shutdown() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.frontier.close()
	c.finish()
}

// normalizeSeed trims the seed and defaults the scheme to https, the
// way a bare hostname is typed into a browser.
func (c *Crawler) normalizeSeed(seed string) (string, string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return "", "", ErrInvalidSeedURL
	}

	if !strings.HasPrefix(seed, "http://") && !strings.HasPrefix(seed, "https://") {
		seed = "https://" + seed
	}

	u, err := url.Parse(seed)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidSeedURL, err)
	}
	if u.Host == "" {
		return "", "", ErrInvalidSeedURL
	}

	return seed, u.Host, nil
}
