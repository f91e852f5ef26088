package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/config"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/crawler"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/probe"
)

// ProbeStep runs one network probe against the target and records the
// result in the report.
//
// Design decision: One step per probe rather than one step running all
// probes because:
// 1. The pipeline log shows exactly which probe is running
// 2. Individual probes can be enabled or disabled per scan
// 3. A probe failure is attributed to the right step
type ProbeStep struct {
	// prober performs the actual network probe.
	prober probe.Prober

	// logger for structured logging.
	logger *slog.Logger
}

// ProbeStepOption configures a ProbeStep.
type ProbeStepOption func(*ProbeStep)

// WithProbeLogger sets a custom logger for the probe step.
func WithProbeLogger(logger *slog.Logger) ProbeStepOption {
	return func(s *ProbeStep) {
		s.logger = logger
	}
}

// NewProbeStep creates a pipeline step that runs the given prober.
func NewProbeStep(prober probe.Prober, opts ...ProbeStepOption) *ProbeStep {
	s := &ProbeStep{
		prober: prober,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return s.prober.Protocol() + "_probe"
}

// Do executes the probe and attaches its result to the report.
// An undetected service is not an error; the probe records the absence
// and the pipeline moves on.
func (s *ProbeStep) Do(ctx context.Context, report *model.ScanReport) error {
	result, err := s.prober.Probe(ctx, report.Target)
	if err != nil {
		return fmt.Errorf("%s probe failed: %w", s.prober.Protocol(), err)
	}

	report.AddProbe(result)

	if result.Detected {
		s.logger.Info("service detected",
			"protocol", result.Protocol,
			"port", result.Port,
			"findings", len(result.Findings),
		)
	} else {
		s.logger.Debug("service not detected",
			"protocol", result.Protocol,
			"port", result.Port,
		)
	}

	return nil
}

// CrawlStep walks the target site and attaches the crawl inventory to
// the report.
//
// Design decision: Crawling is a separate step from the probes because:
// 1. It has different configuration (budget, depth, workers, interval)
// 2. It produces different data (a site inventory vs protocol info)
// 3. Can be disabled for quick scans
type CrawlStep struct {
	// maxURLs is the crawl budget.
	maxURLs int

	// maxDepth limits link traversal depth.
	maxDepth int

	// allowExternal disables domain scoping.
	allowExternal bool

	// workerCount is the number of concurrent fetch workers.
	workerCount int

	// requestInterval is the minimum delay between requests to the
	// same origin. This is a politeness setting.
	requestInterval time.Duration

	// fetchTimeout is the per-request timeout.
	fetchTimeout time.Duration

	// userAgent is the User-Agent header to send with requests.
	userAgent string

	// fetcher overrides the HTTP fetcher, mainly for tests.
	fetcher crawler.Fetcher

	// observer receives progress callbacks during the crawl.
	observer crawler.Observer

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxURLs sets the crawl budget.
func WithCrawlMaxURLs(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxURLs = n
	}
}

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlAllowExternal disables domain scoping so the crawl may
// follow links to other hosts.
func WithCrawlAllowExternal(allow bool) CrawlStepOption {
	return func(s *CrawlStep) {
		s.allowExternal = allow
	}
}

// WithCrawlWorkers sets the number of concurrent fetch workers.
func WithCrawlWorkers(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.workerCount = n
	}
}

// WithCrawlInterval sets the minimum delay between requests to the
// same origin.
func WithCrawlInterval(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.requestInterval = d
	}
}

// WithCrawlFetchTimeout sets the per-request timeout.
func WithCrawlFetchTimeout(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.fetchTimeout = d
	}
}

// WithCrawlUserAgent sets the User-Agent header for HTTP requests.
func WithCrawlUserAgent(userAgent string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.userAgent = userAgent
	}
}

// WithCrawlFetcher overrides the HTTP fetcher used by the crawl.
func WithCrawlFetcher(f crawler.Fetcher) CrawlStepOption {
	return func(s *CrawlStep) {
		s.fetcher = f
	}
}

// WithCrawlObserver sets an observer for crawl progress callbacks.
func WithCrawlObserver(o crawler.Observer) CrawlStepOption {
	return func(s *CrawlStep) {
		s.observer = o
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step.
//
// Default politeness settings are conservative to be respectful of the
// sites being assessed:
//   - requestInterval: 1 second between requests to the same origin
//   - workerCount: 3 concurrent workers
func NewCrawlStep(opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		maxURLs:         config.DefaultMaxURLs,
		maxDepth:        config.DefaultMaxDepth,
		workerCount:     config.DefaultWorkerCount,
		requestInterval: config.DefaultRequestInterval,
		fetchTimeout:    config.DefaultFetchTimeout,
		userAgent:       config.DefaultUserAgent,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	crawlOpts := []crawler.Option{
		crawler.WithMaxURLs(s.maxURLs),
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithStayWithinDomain(!s.allowExternal),
		crawler.WithWorkerCount(s.workerCount),
		crawler.WithRequestInterval(s.requestInterval),
		crawler.WithCrawlerFetchTimeout(s.fetchTimeout),
		crawler.WithUserAgent(s.userAgent),
		crawler.WithLogger(s.logger),
	}
	if s.fetcher != nil {
		crawlOpts = append(crawlOpts, crawler.WithFetcher(s.fetcher))
	}
	if s.observer != nil {
		crawlOpts = append(crawlOpts, crawler.WithObserver(s.observer))
	}

	c := crawler.New(crawlOpts...)

	result, err := c.Crawl(ctx, report.Target)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	report.Crawl = result

	// A scoped crawl that rejected off-domain links is worth a note in
	// the findings; the individual links are listed in the crawl summary.
	if n := len(result.ExternalLinks); n > 0 && !s.allowExternal {
		report.AddFinding(model.NewFinding(
			"external_link",
			"Links to external domains",
			fmt.Sprintf("%d links outside the crawl scope", n),
			report.Target,
		))
	}

	s.logger.Info("crawl completed",
		"pages_visited", len(result.VisitedURLs),
		"urls_discovered", len(result.DiscoveredURLs),
		"external_links", len(result.ExternalLinks),
	)

	return nil
}

// SupportedProbes returns the probe names DefaultPipeline understands,
// in the order they run.
func SupportedProbes() []string {
	return []string{"headers", "dns", "port", "tls", "ssh"}
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// MaxURLs is the crawl budget.
	MaxURLs int

	// MaxDepth is the maximum depth for web crawling.
	MaxDepth int

	// AllowExternal disables domain scoping for the crawl.
	AllowExternal bool

	// Workers is the number of concurrent fetch workers.
	Workers int

	// RequestInterval is the minimum delay between requests to the same
	// origin. This is a "politeness" setting to avoid overwhelming the
	// target.
	RequestInterval time.Duration

	// FetchTimeout is the per-request timeout for page fetches.
	FetchTimeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Headers are extra HTTP headers sent with every request, such as a
	// session cookie for authenticated targets.
	Headers map[string]string

	// Probes lists which probes to run, in order. An empty list runs
	// all supported probes.
	Probes []string

	// ProbeTimeout is the per-connection timeout for network probes.
	ProbeTimeout time.Duration

	// SkipCrawl omits the crawl step for probe-only scans.
	SkipCrawl bool

	// Fetcher overrides the HTTP fetcher shared by the headers probe
	// and the crawl, mainly for tests.
	Fetcher crawler.Fetcher

	// Observer receives crawl progress callbacks.
	Observer crawler.Observer
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxURLs sets the crawl budget for the pipeline.
func WithPipelineMaxURLs(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxURLs = n
	}
}

// WithPipelineMaxDepth sets the crawl depth for the pipeline.
func WithPipelineMaxDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxDepth = depth
	}
}

// WithPipelineAllowExternal disables domain scoping for the crawl.
func WithPipelineAllowExternal(allow bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.AllowExternal = allow
	}
}

// WithPipelineWorkers sets the number of concurrent fetch workers.
func WithPipelineWorkers(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Workers = n
	}
}

// WithPipelineRequestInterval sets the delay between requests to the
// same origin during crawling. A minimum of 500ms is recommended; 1s is
// the default for respectful scanning.
func WithPipelineRequestInterval(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RequestInterval = d
	}
}

// WithPipelineFetchTimeout sets the per-request timeout.
func WithPipelineFetchTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FetchTimeout = d
	}
}

// WithPipelineUserAgent sets the User-Agent header for HTTP requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// WithPipelineHeaders sets extra HTTP headers for every request.
func WithPipelineHeaders(headers map[string]string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Headers = headers
	}
}

// WithPipelineProbes selects which probes to run.
func WithPipelineProbes(probes []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Probes = probes
	}
}

// WithPipelineProbeTimeout sets the per-connection timeout for probes.
func WithPipelineProbeTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ProbeTimeout = d
	}
}

// WithPipelineSkipCrawl omits the crawl step.
func WithPipelineSkipCrawl(skip bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SkipCrawl = skip
	}
}

// WithPipelineFetcher overrides the HTTP fetcher shared by the headers
// probe and the crawl.
func WithPipelineFetcher(f crawler.Fetcher) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Fetcher = f
	}
}

// WithPipelineObserver sets an observer for crawl progress callbacks.
func WithPipelineObserver(o crawler.Observer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Observer = o
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard pipeline for a comprehensive target assessment:
// the headers probe fingerprints the web surface, the network probes
// check DNS, open ports, TLS, and SSH, and the crawl builds the site
// inventory.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want all checks
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxURLs, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config with conservative politeness settings
	cfg := &DefaultPipelineConfig{
		MaxURLs:         config.DefaultMaxURLs,
		MaxDepth:        config.DefaultMaxDepth,
		Workers:         config.DefaultWorkerCount,
		RequestInterval: config.DefaultRequestInterval,
		FetchTimeout:    config.DefaultFetchTimeout,
		UserAgent:       config.DefaultUserAgent,
		ProbeTimeout:    config.DefaultProbeTimeout,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	// The headers probe and the crawl share one fetcher so they present
	// the same client to the target.
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcherOpts := []crawler.HTTPFetcherOption{
			crawler.WithFetchTimeout(cfg.FetchTimeout),
			crawler.WithFetcherUserAgent(cfg.UserAgent),
		}
		if len(cfg.Headers) > 0 {
			fetcherOpts = append(fetcherOpts, crawler.WithFetcherHeaders(cfg.Headers))
		}
		fetcher = crawler.NewHTTPFetcher(fetcherOpts...)
	}

	probers := map[string]probe.Prober{
		"headers": probe.NewHeadersProber(fetcher, probe.WithHeadersTimeout(cfg.ProbeTimeout)),
		"dns":     probe.NewDNSProber(probe.WithDNSTimeout(cfg.ProbeTimeout)),
		"port":    probe.NewPortProber(probe.WithPortTimeout(cfg.ProbeTimeout)),
		"tls":     probe.NewTLSProber(probe.WithTLSTimeout(cfg.ProbeTimeout)),
		"ssh":     probe.NewSSHProber(probe.WithSSHTimeout(cfg.ProbeTimeout)),
	}

	probes := cfg.Probes
	if len(probes) == 0 {
		probes = SupportedProbes()
	}

	for _, name := range probes {
		prober, ok := probers[name]
		if !ok {
			p.logger.Warn("unknown probe", "probe", name)
			continue
		}
		p.AddStep(NewProbeStep(prober, WithProbeLogger(p.logger)))
	}

	if !cfg.SkipCrawl {
		crawlOpts := []CrawlStepOption{
			WithCrawlMaxURLs(cfg.MaxURLs),
			WithCrawlMaxDepth(cfg.MaxDepth),
			WithCrawlAllowExternal(cfg.AllowExternal),
			WithCrawlWorkers(cfg.Workers),
			WithCrawlInterval(cfg.RequestInterval),
			WithCrawlFetchTimeout(cfg.FetchTimeout),
			WithCrawlUserAgent(cfg.UserAgent),
			WithCrawlFetcher(fetcher),
			WithCrawlLogger(p.logger),
		}
		if cfg.Observer != nil {
			crawlOpts = append(crawlOpts, WithCrawlObserver(cfg.Observer))
		}
		p.AddStep(NewCrawlStep(crawlOpts...))
	}

	return p
}
