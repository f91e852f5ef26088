package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/config"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/crawler"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site and inventory its pages, assets, and links",
		Long: `Crawl visits a site breadth-first from the given URL, within the
configured page budget and link depth, and reports every page visited,
URL discovered, asset referenced, and link leaving the domain.

No probes run and nothing is recorded in the database. Use the scan
command for a full assessment.

Examples:
  # Crawl with defaults (100 pages, depth 3)
  astra crawl https://example.com

  # Shallow crawl with a strict page budget
  astra crawl -n 20 -d 1 https://example.com

  # Slow down to one request per second per origin
  astra crawl -i 1s https://example.com

  # JSON inventory to a file
  astra crawl --json -o inventory.json https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("max-urls", "n", config.DefaultMaxURLs,
		"Maximum number of pages to visit")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link traversal depth")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkerCount,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("interval", "i", config.DefaultRequestInterval,
		"Minimum delay between requests to the same origin")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().BoolP("allow-external", "e", false,
		"Follow links that leave the seed's domain")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildCrawlConfig creates a Config from the crawl command's flags. The
// crawl command defines a subset of the scan command's flags, so it
// cannot share buildConfig.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxURLs, err = cmd.Flags().GetInt("max-urls")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.WorkerCount, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.RequestInterval, err = cmd.Flags().GetDuration("interval")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.AllowExternal, err = cmd.Flags().GetBool("allow-external")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runCrawl executes a crawl of a single target and writes the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	target := cfg.Targets[0]

	c := crawler.New(
		crawler.WithMaxURLs(cfg.MaxURLs),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithWorkerCount(cfg.WorkerCount),
		crawler.WithRequestInterval(cfg.RequestInterval),
		crawler.WithCrawlerFetchTimeout(cfg.FetchTimeout),
		crawler.WithStayWithinDomain(!cfg.AllowExternal),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithObserver(newProgressObserver(os.Stderr)),
		crawler.WithLogger(logger),
	)

	fmt.Printf("Crawling %s...\n", target)
	startTime := time.Now()

	result, err := c.Crawl(ctx, target)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	scanReport := model.NewScanReport(target)
	scanReport.Crawl = result

	return outputReport(cfg, scanReport)
}

// progressObserver prints crawl progress to a terminal. Progress lines
// are rewritten in place with a carriage return so a long crawl does not
// scroll the screen.
type progressObserver struct {
	w  io.Writer
	mu sync.Mutex
	// last is the most recent percentage printed, -1 before the first
	// update so that 0% is printed too.
	last int
}

func newProgressObserver(w io.Writer) *progressObserver {
	return &progressObserver{w: w, last: -1}
}

// OnProgress prints the completion percentage when it changes.
func (p *progressObserver) OnProgress(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if percent == p.last {
		return
	}
	p.last = percent
	fmt.Fprintf(p.w, "\rProgress: %3d%%", percent)
}

// OnURLDiscovered is a no-op; discovered URLs appear in the final report.
func (p *progressObserver) OnURLDiscovered(_ string) {}

// OnComplete prints the final page and URL counts on their own line.
func (p *progressObserver) OnComplete(result *crawler.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\rVisited %d pages, discovered %d URLs\n",
		len(result.VisitedURLs), len(result.DiscoveredURLs))
}
