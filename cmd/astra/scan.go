package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/config"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/database"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/log"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/pipeline"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [target]...",
		Short: "Assess the attack surface of one or more targets",
		Long: `Scan performs a full attack surface assessment of web targets.

For each target it probes the host's network services and crawls the
site within the configured bounds, checking for:
- Service exposure (open ports, SSH, DNS records)
- Transport security (TLS versions, certificate lifetime)
- HTTP hygiene (security headers, server fingerprints)
- Site inventory (pages, assets, links leaving the domain)

Examples:
  # Assess a single target
  astra scan example.com

  # Assess multiple targets concurrently
  astra scan site1.com site2.com site3.com

  # Run only the TLS and headers probes, skip the crawl
  astra scan --probes tls,headers --skip-crawl example.com

  # Output JSON report to a file
  astra scan --json -o report.json example.com

  # Use a custom profile file
  astra scan -c myprofiles.yml example.com

Profile file (.astra.yml) example:
  defaults:
    maxUrls: 50
  targets:
    example.com:
      maxDepth: 5
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-urls", "n", config.DefaultMaxURLs,
		"Maximum number of pages to visit per target")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link traversal depth")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkerCount,
		"Number of concurrent fetch workers per crawl")
	cmd.Flags().DurationP("interval", "i", config.DefaultRequestInterval,
		"Minimum delay between requests to the same origin")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().BoolP("allow-external", "e", false,
		"Follow links that leave the target's domain")

	// Probe selection flags
	cmd.Flags().StringSliceP("probes", "p", nil,
		"Probes to run (headers,dns,port,tls,ssh); default all")
	cmd.Flags().Bool("skip-crawl", false,
		"Run probes only, without crawling the site")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent target assessments")

	// Profile file
	cmd.Flags().StringP("config", "c", "",
		"Profile file path (default: .astra.yml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record results in the local database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
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

	cfg.Probes, err = cmd.Flags().GetStringSlice("probes")
	if err != nil {
		return nil, err
	}

	cfg.SkipCrawl, err = cmd.Flags().GetBool("skip-crawl")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-target profiles from the profile file.
	// If user explicitly specified a profile path, error if not found.
	// If no path specified, silently use empty profiles if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a profile file that doesn't exist
		return nil, fmt.Errorf("profile file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty profiles if no file found and user didn't explicitly specify one
		cfg.Profiles = &config.File{
			Targets: make(map[string]config.Profile),
		}
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

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()
	cfg.Verbose = getVerboseFlag(cmd)

	// Get positional arguments (target URLs or hosts)
	cfg.Targets = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Credentials embedded in URLs are redacted before log lines reach the
// terminal.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more URLs or hosts as arguments)")
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	// Use batch processor for parallel scanning if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, logger)
	}

	// Single target or sequential scanning
	return runSequentialScan(ctx, cfg, db, logger)
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get the per-target profile
		profile := getProfile(cfg, target)

		// Create pipeline with profile overrides applied
		p := createPipelineForTarget(logger, cfg, profile)

		scanReport := model.NewScanReport(target)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.Profiles != nil && len(cfg.Profiles.Targets) > 0 {
		logger.Warn("batch processing uses the default profile only; per-target profiles (depth, headers, interval) are ignored",
			"profileCount", len(cfg.Profiles.Targets))
		fmt.Fprintf(os.Stderr, "Warning: Per-target profiles are ignored in batch mode. Use sequential mode (--batch 1) to apply them.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Note: For batch processing, we use the default profile.
			// Per-target profiles would require per-target pipeline creation.
			var profile config.Profile
			if cfg.Profiles != nil {
				profile = cfg.Profiles.Defaults
			}
			return createPipelineForTarget(logger, cfg, profile)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Targets), scanReport.Target)

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.Target, "error", err)
		}

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", scanReport.Target, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// getProfile returns the merged profile for a target.
// Profile keys are bare hosts, so scheme prefixes and paths are stripped
// before lookup.
func getProfile(cfg *config.Config, target string) config.Profile {
	if cfg.Profiles == nil {
		return config.Profile{}
	}

	host := target
	for _, prefix := range []string{"http://", "https://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}

	return cfg.Profiles.GetProfile(host)
}

// createPipelineForTarget creates a pipeline with the given configuration.
// Profile values override global flags where set.
func createPipelineForTarget(logger *slog.Logger, cfg *config.Config, profile config.Profile) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	maxURLs := cfg.MaxURLs
	if profile.MaxURLs > 0 {
		maxURLs = profile.MaxURLs
	}
	maxDepth := cfg.MaxDepth
	if profile.MaxDepth > 0 {
		maxDepth = profile.MaxDepth
	}
	workers := cfg.WorkerCount
	if profile.Workers > 0 {
		workers = profile.Workers
	}
	interval := cfg.RequestInterval
	if !profile.RequestInterval.IsZero() {
		interval = profile.RequestInterval.Duration
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineMaxURLs(maxURLs),
		pipeline.WithPipelineMaxDepth(maxDepth),
		pipeline.WithPipelineWorkers(workers),
		pipeline.WithPipelineRequestInterval(interval),
		pipeline.WithPipelineFetchTimeout(cfg.FetchTimeout),
		pipeline.WithPipelineAllowExternal(cfg.AllowExternal || profile.AllowExternal),
		pipeline.WithPipelineUserAgent(cfg.UserAgent),
	}

	// Probe selection from flags
	if len(cfg.Probes) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineProbes(cfg.Probes))
	}
	if cfg.SkipCrawl {
		configOpts = append(configOpts, pipeline.WithPipelineSkipCrawl(true))
	}

	// Custom headers for authenticated targets
	if len(profile.Headers) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineHeaders(profile.Headers))
	}

	return pipeline.DefaultPipeline(pipelineOpts, configOpts...)
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports may contain sensitive information that should only be readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		// JSON carries the full report plus the tool version for
		// downstream processing
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		// Human-readable report (default)
		w = report.NewTextWriter(output)
	}

	_, err := w.Write(scanReport)
	return err
}

// saveScanReport saves the scan report and its crawl inventory to the
// database. If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	if scanReport.Crawl != nil {
		n, err := db.SaveCrawl(ctx, scanReport.Target, scanReport.Crawl)
		if err != nil {
			return fmt.Errorf("failed to save crawl inventory: %w", err)
		}
		logger.Info("crawl inventory saved", "target", scanReport.Target, "records", n)
	}

	logger.Info("scan report saved to database", "target", scanReport.Target)
	return nil
}
