package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Where applicable these match the defaults of the original Astra toolkit.
const (
	// DefaultMaxURLs is the maximum number of pages visited per crawl.
	// This is the crawl budget: once this many pages have been processed
	// the crawl reports completion even if the frontier is not empty.
	// Users can override this via the --max-urls CLI flag.
	DefaultMaxURLs = 100

	// DefaultMaxDepth bounds link traversal. The seed page is depth 0;
	// links found on it are depth 1, and so on. Pages at the maximum
	// depth are still fetched and recorded, but their links are not
	// followed.
	DefaultMaxDepth = 3

	// DefaultWorkerCount is the number of concurrent fetch workers.
	// Three is intentionally small: the worker count is a politeness
	// control that keeps load on any single target low, not a
	// throughput knob.
	DefaultWorkerCount = 3

	// DefaultRequestInterval is the minimum delay between two requests
	// to the same origin (scheme + host + port). Workers fetching
	// different origins are never delayed by each other.
	// 1 second is conservative and respectful of server resources.
	DefaultRequestInterval = 1 * time.Second

	// DefaultFetchTimeout is the per-request timeout for page fetches.
	// 10 seconds matches typical interactive expectations; slow pages
	// are recorded as failures and the crawl moves on.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultProbeTimeout is the per-connection timeout for network
	// probes (port scan, TLS handshake, SSH exchange). Probes target a
	// single host and should fail fast.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultBatchSize is the number of concurrent target assessments
	// when scanning a list. Two keeps the per-origin rate limiting of
	// each crawl meaningful; higher values trade politeness for speed.
	DefaultBatchSize = 2

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is sufficient for any real HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent is the User-Agent header sent with HTTP requests.
	// This is the browser string the original Astra toolkit shipped with;
	// some sites serve reduced markup to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "astra"
)

// Config holds all configuration options for Astra.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Targets is the list of URLs or hosts to assess.
	// Must contain at least one entry.
	Targets []string

	// MaxURLs is the crawl budget: the maximum number of pages visited
	// per target. A value of 0 means use the default (DefaultMaxURLs).
	MaxURLs int

	// MaxDepth is the maximum link-traversal depth. Depth 0 means only
	// the seed page is fetched; its links are recorded but not followed.
	MaxDepth int

	// WorkerCount is the number of concurrent fetch workers per crawl.
	WorkerCount int

	// RequestInterval is the minimum delay between requests to the same
	// origin. Lower values may trigger rate limiting on the target.
	RequestInterval time.Duration

	// FetchTimeout is the per-request timeout for page fetches.
	FetchTimeout time.Duration

	// AllowExternal disables domain scoping. When false (the default)
	// the crawl stays within the seed's host and records links to other
	// hosts as external without fetching them.
	AllowExternal bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent assessments when processing
	// multiple targets.
	BatchSize int

	// Probes lists which network probes to run during a scan.
	// An empty slice means all supported probes.
	Probes []string

	// SkipCrawl omits the crawl from a scan, running probes only.
	SkipCrawl bool

	// ConfigFilePath is the path to the profile file.
	// If empty, the tool searches for .astra.yml in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// Profiles holds per-target overrides loaded from the profile file.
	Profiles *File

	// JSONReport enables JSON report output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/astra on Linux).
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, worker
// count). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxURLs:         DefaultMaxURLs,
		MaxDepth:        DefaultMaxDepth,
		WorkerCount:     DefaultWorkerCount,
		RequestInterval: DefaultRequestInterval,
		FetchTimeout:    DefaultFetchTimeout,
		BatchSize:       DefaultBatchSize,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for Astra.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/astra
// On macOS: ~/Library/Application Support/astra
// On Windows: %LOCALAPPDATA%\astra
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for Astra.
// On Linux: ~/.config/astra
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any work begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// The crawl budget must allow at least the seed page
	if c.MaxURLs < 1 {
		return ErrInvalidMaxURLs
	}

	// Depth 0 is valid (seed only); negative depth is not
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	// At least one worker is required to make progress
	if c.WorkerCount < 1 {
		return ErrInvalidWorkerCount
	}

	// A negative interval is meaningless; zero disables rate limiting
	if c.RequestInterval < 0 {
		return ErrInvalidRequestInterval
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; zero means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
