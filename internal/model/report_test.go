package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/crawler"
)

// TestNewScanReport tests report initialization.
func TestNewScanReport(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")

	if r.Target != "example.com" {
		t.Errorf("unexpected target %q", r.Target)
	}
	if time.Since(r.DateScanned) > time.Minute {
		t.Error("expected a recent scan date")
	}
	if r.Probes == nil || r.Findings == nil {
		t.Error("expected initialized collections")
	}
	if r.TotalFindings() != 0 {
		t.Errorf("expected an empty report, got %d findings", r.TotalFindings())
	}
}

// TestScanReportAddFinding tests deduplication and severity counters.
func TestScanReportAddFinding(t *testing.T) {
	t.Parallel()

	t.Run("updates severity counters", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("example.com")
		r.AddFinding(NewFinding("telnet_open", "Telnet exposed", "23", "example.com"))
		r.AddFinding(NewFinding("rdp_open", "RDP exposed", "3389", "example.com"))
		r.AddFinding(NewFinding("missing_csp", "No CSP", "", "https://example.com"))
		r.AddFinding(NewFinding("server_version_disclosure", "Server header", "nginx/1.18.0", "https://example.com"))
		r.AddFinding(NewFinding("open_port", "Open port", "80", "example.com"))

		if r.CriticalCount != 1 || r.HighCount != 1 || r.MediumCount != 1 || r.LowCount != 1 || r.InfoCount != 1 {
			t.Errorf("unexpected counters: crit %d high %d med %d low %d info %d",
				r.CriticalCount, r.HighCount, r.MediumCount, r.LowCount, r.InfoCount)
		}
		if r.TotalFindings() != 5 {
			t.Errorf("expected 5 findings, got %d", r.TotalFindings())
		}
	})

	t.Run("skips exact duplicates", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("example.com")
		f := NewFinding("open_port", "Open port", "80", "example.com")
		r.AddFinding(f)
		r.AddFinding(f)

		if r.TotalFindings() != 1 {
			t.Errorf("expected 1 finding after duplicate add, got %d", r.TotalFindings())
		}
		if r.InfoCount != 1 {
			t.Errorf("expected counter 1 after duplicate add, got %d", r.InfoCount)
		}
	})

	t.Run("same type with different values are kept", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("example.com")
		r.AddFinding(NewFinding("open_port", "Open port", "80", "example.com"))
		r.AddFinding(NewFinding("open_port", "Open port", "443", "example.com"))

		if r.TotalFindings() != 2 {
			t.Errorf("expected 2 findings, got %d", r.TotalFindings())
		}
	})
}

// TestScanReportAddProbe tests probe attachment and finding hoisting.
func TestScanReportAddProbe(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")

	ssh := NewProbeResult("ssh", 22)
	ssh.Detected = true
	ssh.Banner = "SSH-2.0-OpenSSH_9.6"
	ssh.SetDetail("fingerprint", "SHA256:abcdef")
	ssh.AddFinding(NewFinding("ssh_detected", "SSH service", "22", "example.com"))

	port := NewProbeResult("port", 0)
	port.Detected = true
	// The port probe saw the same SSH service; the report must not
	// double-count it.
	port.AddFinding(NewFinding("ssh_detected", "SSH service", "22", "example.com"))
	port.AddFinding(NewFinding("open_port", "Open port", "80", "example.com"))

	r.AddProbe(ssh)
	r.AddProbe(port)

	if len(r.Probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(r.Probes))
	}
	if r.Probes["ssh"].Detail("fingerprint") != "SHA256:abcdef" {
		t.Errorf("unexpected ssh details: %v", r.Probes["ssh"].Details)
	}
	if len(r.PerformedProbes) != 2 || r.PerformedProbes[0] != "ssh" {
		t.Errorf("unexpected performed probes: %v", r.PerformedProbes)
	}
	if r.TotalFindings() != 2 {
		t.Errorf("expected 2 deduplicated findings, got %d", r.TotalFindings())
	}

	r.AddProbe(nil) // must not panic
}

// TestScanReportHighestSeverity tests severity ranking.
func TestScanReportHighestSeverity(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")
	if r.HighestSeverity() != SeverityInfo {
		t.Errorf("empty report should rank info, got %v", r.HighestSeverity())
	}

	r.AddFinding(NewFinding("missing_csp", "No CSP", "", "https://example.com"))
	if r.HighestSeverity() != SeverityMedium {
		t.Errorf("expected medium, got %v", r.HighestSeverity())
	}

	r.AddFinding(NewFinding("tls_certificate_expired", "Expired cert", "", "example.com:443"))
	if r.HighestSeverity() != SeverityCritical {
		t.Errorf("expected critical, got %v", r.HighestSeverity())
	}
}

// TestScanReportFindingsBySeverity tests severity filtering.
func TestScanReportFindingsBySeverity(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")
	r.AddFinding(NewFinding("missing_csp", "No CSP", "", "https://example.com"))
	r.AddFinding(NewFinding("missing_hsts", "No HSTS", "", "https://example.com"))
	r.AddFinding(NewFinding("open_port", "Open TCP port", "8443 (unknown)", "example.com:8443"))

	medium := r.FindingsBySeverity(SeverityMedium)
	if len(medium) != 2 {
		t.Fatalf("expected 2 medium findings, got %d", len(medium))
	}
	if medium[0].Type != "missing_csp" || medium[1].Type != "missing_hsts" {
		t.Errorf("expected insertion order, got %q then %q", medium[0].Type, medium[1].Type)
	}

	if got := r.FindingsBySeverity(SeverityCritical); len(got) != 0 {
		t.Errorf("expected no critical findings, got %d", len(got))
	}
}

// TestScanReportRiskSummary tests the one-line counter rendering.
func TestScanReportRiskSummary(t *testing.T) {
	t.Parallel()

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("example.com")
		if got := r.RiskSummary(); got != "no findings" {
			t.Errorf("unexpected summary %q", got)
		}
	})

	t.Run("omits zero counters", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("example.com")
		r.AddFinding(NewFinding("telnet_open", "Telnet exposed", "23", "example.com"))
		r.AddFinding(NewFinding("open_port", "Open port", "80", "example.com"))
		r.AddFinding(NewFinding("open_port", "Open port", "443", "example.com"))

		got := r.RiskSummary()
		if got != "1 critical, 2 info" {
			t.Errorf("unexpected summary %q", got)
		}
	})
}

// TestScanReportSetError tests error recording for serialization.
func TestScanReportSetError(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")
	r.SetError(nil)
	if r.Error != nil || r.ErrorMessage != "" {
		t.Error("nil error should leave the report untouched")
	}

	r.SetError(errors.New("dial timeout"))
	if r.ErrorMessage != "dial timeout" {
		t.Errorf("unexpected error message %q", r.ErrorMessage)
	}
}

// TestScanReportPagesCrawled tests crawl inventory accounting.
func TestScanReportPagesCrawled(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")
	if r.PagesCrawled() != 0 {
		t.Errorf("expected 0 pages without a crawl, got %d", r.PagesCrawled())
	}

	r.Crawl = &crawler.Result{
		VisitedURLs: []string{"https://example.com", "https://example.com/about"},
	}
	if r.PagesCrawled() != 2 {
		t.Errorf("expected 2 pages, got %d", r.PagesCrawled())
	}
}

// TestScanReportJSON tests that a full report serializes cleanly.
func TestScanReportJSON(t *testing.T) {
	t.Parallel()

	r := NewScanReport("example.com")
	r.AddFinding(NewFinding("missing_hsts", "No HSTS", "", "https://example.com"))
	r.SetError(errors.New("probe timeout"))
	r.Crawl = &crawler.Result{VisitedURLs: []string{"https://example.com"}}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, want := range []string{
		`"target":"example.com"`,
		`"missing_hsts"`,
		`"severity_text":"MEDIUM"`,
		`"error":"probe timeout"`,
		`"medium_count":1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("serialized report missing %s:\n%s", want, data)
		}
	}
}
