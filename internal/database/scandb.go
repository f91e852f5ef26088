package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/crawler"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// ScanDB provides SQLite-based storage for crawl inventories and scan reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all targets rather
// than one file per target. This keeps cross-target queries cheap and
// makes backup/restore a single-file copy.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "astra.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// modernc.org/sqlite takes the open mode as a query parameter.
	// mode=rw refuses to create a missing file; mode=rwc creates it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite only supports one writer, and the scanner is the only
	// client, so a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// Path returns the location of the database file.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Pages store the crawl inventory, one row per URL per target
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		title TEXT,
		kind TEXT NOT NULL DEFAULT 'page',
		UNIQUE(url, target)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_target ON pages(target);
	CREATE INDEX IF NOT EXISTS idx_pages_kind ON pages(kind);

	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_target ON scan_reports(target);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := sdb.db.Exec(schema)
	return err
}

// Page kinds classify what a stored URL is.
const (
	// PageKindPage marks a page that was fetched and parsed.
	PageKindPage = "page"

	// PageKindImage marks an image referenced by a crawled page.
	PageKindImage = "image"

	// PageKindScript marks a script referenced by a crawled page.
	PageKindScript = "script"

	// PageKindStylesheet marks a stylesheet referenced by a crawled page.
	PageKindStylesheet = "stylesheet"

	// PageKindDocument marks a linked document such as a PDF.
	PageKindDocument = "document"

	// PageKindExternal marks a link that pointed outside the crawl scope.
	PageKindExternal = "external"
)

// PageRecord represents one stored URL from a crawl.
type PageRecord struct {
	ID         int64
	URL        string
	Target     string
	Timestamp  time.Time
	StatusCode int
	Title      string
	Kind       string
}

// InsertPageRecord inserts or updates a page record.
// Uses UPSERT to handle duplicates (same URL + target).
func (sdb *ScanDB) InsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, target, status_code, title, kind)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url, target) DO UPDATE SET
		status_code = excluded.status_code,
		title = excluded.title,
		kind = excluded.kind,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := sdb.db.ExecContext(ctx, query,
		record.URL,
		record.Target,
		record.StatusCode,
		record.Title,
		record.Kind,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by URL and target.
func (sdb *ScanDB) GetPageRecord(ctx context.Context, url, target string) (*PageRecord, error) {
	query := `
	SELECT id, url, target, timestamp, status_code, title, kind
	FROM pages
	WHERE url = ? AND target = ?
	`

	var record PageRecord
	var timestamp string

	err := sdb.db.QueryRowContext(ctx, query, url, target).Scan(
		&record.ID,
		&record.URL,
		&record.Target,
		&timestamp,
		&record.StatusCode,
		&record.Title,
		&record.Kind,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	// Parse timestamp (SQLite may return different formats depending on version/configuration)
	record.Timestamp = parseTimestamp(timestamp)

	return &record, nil
}

// ListPages queries the stored inventory for a target with an optional
// kind filter. An empty kind returns every record.
func (sdb *ScanDB) ListPages(ctx context.Context, target, kind string) ([]PageRecord, error) {
	query := `
	SELECT id, url, target, timestamp, status_code, title, kind
	FROM pages
	WHERE target = ?
	`
	args := make([]interface{}, 0)
	args = append(args, target)

	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	query += " ORDER BY url"

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var records []PageRecord
	for rows.Next() {
		var record PageRecord
		var timestamp string

		err := rows.Scan(
			&record.ID,
			&record.URL,
			&record.Target,
			&timestamp,
			&record.StatusCode,
			&record.Title,
			&record.Kind,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page record: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		records = append(records, record)
	}

	return records, rows.Err()
}

// HasRecentCrawl checks if a URL was crawled within the specified duration.
func (sdb *ScanDB) HasRecentCrawl(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := sdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// SaveCrawl stores the inventory of a completed crawl as page records.
// Visited pages keep their status code and title; resources and external
// links are stored with just their kind. Repeated scans of the same
// target update records in place. It returns the number of records written.
func (sdb *ScanDB) SaveCrawl(ctx context.Context, target string, res *crawler.Result) (int, error) {
	if res == nil {
		return 0, nil
	}

	records := make([]*PageRecord, 0, len(res.VisitedURLs))
	for _, url := range res.VisitedURLs {
		records = append(records, &PageRecord{
			URL:        url,
			Target:     target,
			StatusCode: res.StatusCodes[url],
			Title:      res.PageTitles[url],
			Kind:       PageKindPage,
		})
	}

	kinds := []struct {
		kind string
		urls []string
	}{
		{PageKindImage, res.Resources.Images},
		{PageKindScript, res.Resources.Scripts},
		{PageKindStylesheet, res.Resources.Stylesheets},
		{PageKindDocument, res.Resources.Documents},
	}
	for _, k := range kinds {
		for _, url := range k.urls {
			records = append(records, &PageRecord{URL: url, Target: target, Kind: k.kind})
		}
	}

	for _, url := range res.ExternalLinks {
		records = append(records, &PageRecord{URL: url, Target: target, Kind: PageKindExternal})
	}

	for i, record := range records {
		if _, err := sdb.InsertPageRecord(ctx, record); err != nil {
			return i, fmt.Errorf("failed to save %s record for %s: %w", record.Kind, record.URL, err)
		}
	}

	return len(records), nil
}

// SaveScanReport saves a complete scan report as JSON.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Extract risk summary for efficient querying without loading the
	// full report
	riskSummary := map[string]int{
		"critical": report.CriticalCount,
		"high":     report.HighCount,
		"medium":   report.MediumCount,
		"low":      report.LowCount,
		"info":     report.InfoCount,
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO scan_reports (target, report_json, risk_summary)
	VALUES (?, ?, ?)
	`

	_, err = sdb.db.ExecContext(ctx, query,
		report.Target,
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	return nil
}

// GetLatestScanReport retrieves the most recent scan report for a target.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, target string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, target).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListScannedTargets returns a list of all scanned targets.
func (sdb *ScanDB) ListScannedTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT target FROM scan_reports
	ORDER BY target
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// GetScanHistory retrieves all scan reports for a target, newest first.
func (sdb *ScanDB) GetScanHistory(ctx context.Context, target string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// This is used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64

	// Target is the scanned host or URL.
	Target string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int
}

// GetScanHistoryWithMetadata retrieves scan report metadata for a target.
// This is more efficient than GetScanHistory when only metadata is needed.
func (sdb *ScanDB) GetScanHistoryWithMetadata(ctx context.Context, target string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, target, timestamp, risk_summary
	FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Target, &timestamp, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		} else {
			meta.RiskSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanReportByID retrieves a scan report by its database ID.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE id = ?
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
