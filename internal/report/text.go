package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and severity indicators.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *TextWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeServices(&sb, report)
	w.writeCrawl(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *TextWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          ASTRA SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:        %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Scan Date:     %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n", report.PagesCrawled()))

	if len(report.PerformedProbes) > 0 {
		labels := make([]string, 0, len(report.PerformedProbes))
		for _, probe := range report.PerformedProbes {
			labels = append(labels, protocolLabel(probe))
		}
		sb.WriteString(fmt.Sprintf("Probes:        %s\n", strings.Join(labels, ", ")))
	}

	if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n", report.ErrorMessage))
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *TextWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	w.writeSectionHeader(sb, "SEVERITY SUMMARY")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", report.CriticalCount))
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", report.HighCount))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", report.MediumCount))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", report.LowCount))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", report.InfoCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d findings (%s)\n", report.TotalFindings(), report.RiskSummary()))
	sb.WriteString("\n")
}

// writeServices writes the detected services section.
func (w *TextWriter) writeServices(sb *strings.Builder, report *model.ScanReport) {
	services := detectedServices(report)
	if len(services) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "DETECTED SERVICES")

	if len(services) == 0 {
		sb.WriteString("  No services detected\n")
	} else {
		for _, service := range services {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", service))
		}
	}
	sb.WriteString("\n")
}

// writeCrawl writes the crawl statistics section.
func (w *TextWriter) writeCrawl(sb *strings.Builder, report *model.ScanReport) {
	crawl := report.Crawl
	if crawl == nil {
		return
	}

	w.writeSectionHeader(sb, "CRAWL SUMMARY")

	sb.WriteString(fmt.Sprintf("  Pages visited:   %d\n", len(crawl.VisitedURLs)))
	sb.WriteString(fmt.Sprintf("  URLs discovered: %d\n", len(crawl.DiscoveredURLs)))
	sb.WriteString(fmt.Sprintf("  External links:  %d\n", len(crawl.ExternalLinks)))
	sb.WriteString(fmt.Sprintf("  Images:          %d\n", len(crawl.Resources.Images)))
	sb.WriteString(fmt.Sprintf("  Scripts:         %d\n", len(crawl.Resources.Scripts)))
	sb.WriteString(fmt.Sprintf("  Stylesheets:     %d\n", len(crawl.Resources.Stylesheets)))
	sb.WriteString(fmt.Sprintf("  Documents:       %d\n", len(crawl.Resources.Documents)))

	if w.verbose {
		for _, url := range crawl.VisitedURLs {
			line := fmt.Sprintf("  [%d] %s", crawl.StatusCodes[url], url)
			if title := crawl.PageTitles[url]; title != "" {
				line += fmt.Sprintf(" (%s)", title)
			}
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity.
func (w *TextWriter) writeFindings(sb *strings.Builder, report *model.ScanReport) {
	if report.TotalFindings() == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "FINDINGS")

	// Write findings in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *TextWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	indicator := severityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("  * %s\n", finding.Title))
		if finding.Value != "" {
			sb.WriteString(fmt.Sprintf("    Value: %s\n", finding.Value))
		}
		if finding.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", finding.Location))
		}
		if w.verbose && finding.Impact != "" {
			sb.WriteString(fmt.Sprintf("    Impact: %s\n", finding.Impact))
		}
		if w.verbose && finding.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("    Recommendation: %s\n", finding.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// writeSectionHeader writes a dashed section divider with a title.
func (w *TextWriter) writeSectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by Astra\n")
	sb.WriteString("https://github.com/iamrohitkandpal/Astra-A-Weapon\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// detectedServices renders one line per detected probe, sorted by
// protocol so the output is stable.
func detectedServices(report *model.ScanReport) []string {
	protocols := make([]string, 0, len(report.Probes))
	for proto, res := range report.Probes {
		if res != nil && res.Detected {
			protocols = append(protocols, proto)
		}
	}
	sort.Strings(protocols)

	services := make([]string, 0, len(protocols))
	for _, proto := range protocols {
		services = append(services, serviceLine(report.Probes[proto]))
	}
	return services
}

// serviceLine summarizes one probe result for display.
func serviceLine(res *model.ProbeResult) string {
	label := protocolLabel(res.Protocol)
	switch {
	case res.Banner != "":
		return fmt.Sprintf("%s - %s", label, res.Banner)
	case res.Detail("open_ports") != "":
		return fmt.Sprintf("%s - open: %s", label, res.Detail("open_ports"))
	default:
		return label
	}
}
