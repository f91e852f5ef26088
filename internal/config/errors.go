package config

import "errors"

// Sentinel errors for configuration validation.
// These are package-level variables so callers can use errors.Is to
// distinguish failure causes.
var (
	// ErrNoTarget is returned when no target URL or host was provided.
	ErrNoTarget = errors.New("no target specified")

	// ErrInvalidMaxURLs is returned when the crawl budget is less than 1.
	ErrInvalidMaxURLs = errors.New("max URLs must be at least 1")

	// ErrInvalidMaxDepth is returned when the crawl depth is negative.
	ErrInvalidMaxDepth = errors.New("max depth must not be negative")

	// ErrInvalidWorkerCount is returned when the worker count is less than 1.
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")

	// ErrInvalidRequestInterval is returned when the per-origin request
	// interval is negative.
	ErrInvalidRequestInterval = errors.New("request interval must not be negative")

	// ErrInvalidTimeout is returned when the fetch timeout is zero or negative.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidBatchSize is returned when the batch size is zero or negative.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrConflictingReportFormats is returned when both JSON and Markdown
	// report formats are requested. The formats are mutually exclusive.
	ErrConflictingReportFormats = errors.New("JSON and Markdown report formats are mutually exclusive")

	// ErrInvalidMaxBodySize is returned when the maximum body size is negative.
	ErrInvalidMaxBodySize = errors.New("max body size must not be negative")
)
