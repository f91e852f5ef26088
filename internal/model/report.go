package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/crawler"
)

// ScanReport is the aggregated result of scanning one target.
// It collects the crawl inventory, every probe's observations, and the
// deduplicated findings with severity counters.
//
// Design decision: We use a single struct rather than many small ones
// to simplify serialization and database storage. Probes report into
// ProbeResult values; AddProbe and AddFinding keep the aggregate
// consistent so producers never touch the counters directly.
type ScanReport struct {
	// Target is the scanned host or URL as the user gave it.
	Target string `json:"target"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// PerformedProbes lists the probes that actually ran, in order.
	PerformedProbes []string `json:"performed_probes,omitempty"`

	// Crawl holds the site inventory when the crawl step ran.
	Crawl *crawler.Result `json:"crawl,omitempty"`

	// Probes maps protocol names to what each probe observed.
	Probes map[string]*ProbeResult `json:"probes,omitempty"`

	// Findings contains all deduplicated findings across probes and crawl.
	Findings []Finding `json:"findings,omitempty"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// Error contains any error that occurred during scanning.
	// Only set if the scan failed or partially failed.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// ProbeResult contains what a single protocol probe observed.
//
// Design decision: We use one generic result type rather than
// protocol-specific results because:
//  1. The pipeline needs a uniform way to collect results
//  2. Common fields like port and banner apply to all protocols
//  3. Protocol-specific data fits in the Details map
type ProbeResult struct {
	// Protocol is the probed protocol (e.g., "tls", "ssh", "port").
	Protocol string `json:"protocol"`

	// Port is the port that was probed, 0 when not port-specific.
	Port int `json:"port,omitempty"`

	// Detected indicates whether the service was detected.
	Detected bool `json:"detected"`

	// Banner contains any banner or version information returned.
	// For SSH this is the version string; for headers probes the
	// Server header.
	Banner string `json:"banner,omitempty"`

	// Details contains protocol-specific observations as plain strings
	// so the whole result serializes cleanly.
	Details map[string]string `json:"details,omitempty"`

	// Findings contains security findings from this probe.
	Findings []Finding `json:"findings,omitempty"`
}

// NewProbeResult creates a ProbeResult with initialized collections.
func NewProbeResult(protocol string, port int) *ProbeResult {
	return &ProbeResult{
		Protocol: protocol,
		Port:     port,
		Details:  make(map[string]string),
		Findings: make([]Finding, 0),
	}
}

// AddFinding appends a finding to this probe's results.
func (r *ProbeResult) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// SetDetail records a protocol-specific observation.
func (r *ProbeResult) SetDetail(key, value string) {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
}

// Detail retrieves an observation, empty when absent.
func (r *ProbeResult) Detail(key string) string {
	return r.Details[key]
}

// NewScanReport creates a report for the given target.
func NewScanReport(target string) *ScanReport {
	return &ScanReport{
		Target:      target,
		DateScanned: time.Now(),
		Probes:      make(map[string]*ProbeResult),
		Findings:    make([]Finding, 0),
	}
}

// AddProbe attaches a probe's result and hoists its findings into the
// report, so the aggregate view deduplicates across probes.
func (r *ScanReport) AddProbe(res *ProbeResult) {
	if res == nil {
		return
	}
	if r.Probes == nil {
		r.Probes = make(map[string]*ProbeResult)
	}
	r.Probes[res.Protocol] = res
	r.PerformedProbes = append(r.PerformedProbes, res.Protocol)

	for _, f := range res.Findings {
		r.AddFinding(f)
	}
}

// AddFinding adds a finding to the report, skipping exact duplicates
// and keeping the severity counters in sync.
//
// Duplicates are identified by (Type, Value, Location): two probes
// noticing the same open port must not double-count it.
func (r *ScanReport) AddFinding(finding Finding) {
	for _, f := range r.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	r.Findings = append(r.Findings, finding)

	switch finding.Severity {
	case SeverityCritical:
		r.CriticalCount++
	case SeverityHigh:
		r.HighCount++
	case SeverityMedium:
		r.MediumCount++
	case SeverityLow:
		r.LowCount++
	case SeverityInfo:
		r.InfoCount++
	}
}

// SetError records a scan-level failure in both the typed and the
// serializable field.
func (r *ScanReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}

// TotalFindings returns the number of findings across all severities.
func (r *ScanReport) TotalFindings() int {
	return len(r.Findings)
}

// FindingsBySeverity returns the findings at one severity level, in
// the order they were added.
func (r *ScanReport) FindingsBySeverity(severity Severity) []Finding {
	var findings []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			findings = append(findings, f)
		}
	}
	return findings
}

// HighestSeverity returns the most severe level present, or
// SeverityInfo for a report without findings.
func (r *ScanReport) HighestSeverity() Severity {
	highest := SeverityInfo
	for _, f := range r.Findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest
}

// RiskSummary renders the severity counters as a short line, e.g.
// "1 critical, 3 high, 2 medium". Zero counters are omitted; a report
// without findings summarizes as "no findings".
func (r *ScanReport) RiskSummary() string {
	parts := make([]string, 0, 5)
	for _, c := range []struct {
		count int
		label string
	}{
		{r.CriticalCount, "critical"},
		{r.HighCount, "high"},
		{r.MediumCount, "medium"},
		{r.LowCount, "low"},
		{r.InfoCount, "info"},
	} {
		if c.count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.count, c.label))
		}
	}
	if len(parts) == 0 {
		return "no findings"
	}
	return strings.Join(parts, ", ")
}

// PagesCrawled returns how many pages the crawl visited, 0 without a
// crawl step.
func (r *ScanReport) PagesCrawled() int {
	if r.Crawl == nil {
		return 0
	}
	return len(r.Crawl.VisitedURLs)
}
