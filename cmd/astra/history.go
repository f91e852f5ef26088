package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/config"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/database"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "List and inspect recorded scan results",
		Long: `History lists and inspects scan results recorded in the local
database. Every scan is stored unless --no-save was given, so past
assessments of a target can be reviewed without rescanning it.

Examples:
  # List all scans recorded for a target
  astra history example.com

  # Show the most recent report for a target
  astra history --latest example.com

  # Show one specific report by its ID
  astra history --show-id 42 example.com

  # List every target with recorded scans
  astra history --list-targets

  # Machine-readable output
  astra history --json example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-targets", "L", false,
		"List every target with recorded scans")
	cmd.Flags().BoolP("latest", "l", false,
		"Show the most recent report for the target")
	cmd.Flags().Int64P("show-id", "i", 0,
		"Show the report with the given scan ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}

	showID, err := cmd.Flags().GetInt64("show-id")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	if !listTargets && len(args) == 0 {
		return errors.New("target is required (use --list-targets to see recorded targets)")
	}

	ctx := context.Background()

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if listTargets {
		return listScannedTargets(ctx, db, jsonOutput)
	}
	target := args[0]

	switch {
	case latest:
		return showLatestReport(ctx, db, target, jsonOutput)
	case showID > 0:
		return showReportByID(ctx, db, target, showID, jsonOutput)
	default:
		return listScanHistory(ctx, db, target, jsonOutput)
	}
}

// listScannedTargets prints every target with at least one recorded scan.
func listScannedTargets(ctx context.Context, db *database.ScanDB, jsonOutput bool) error {
	targets, err := db.ListScannedTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	}

	if len(targets) == 0 {
		fmt.Println("No scans recorded yet.")
		return nil
	}

	fmt.Printf("Recorded targets (%d):\n", len(targets))
	for _, t := range targets {
		fmt.Printf("  %s\n", t)
	}

	return nil
}

// listScanHistory prints the recorded scans for a target, newest first.
func listScanHistory(ctx context.Context, db *database.ScanDB, target string, jsonOutput bool) error {
	history, err := db.GetScanHistoryWithMetadata(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	if len(history) == 0 {
		fmt.Printf("No scans recorded for %s\n", target)
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", target, len(history))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "TIMESTAMP", "RISK SUMMARY")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range history {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatRiskSummary(meta.RiskSummary),
		)
	}

	return nil
}

// showLatestReport prints the most recent report recorded for a target.
func showLatestReport(ctx context.Context, db *database.ScanDB, target string, jsonOutput bool) error {
	scanReport, err := db.GetLatestScanReport(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get latest scan for %s: %w", target, err)
	}
	return printStoredReport(scanReport, jsonOutput)
}

// showReportByID prints one specific report. The report must belong to
// the given target so a typo in the ID does not show the wrong site's
// results.
func showReportByID(ctx context.Context, db *database.ScanDB, target string, id int64, jsonOutput bool) error {
	scanReport, err := db.GetScanReportByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get scan %d: %w", id, err)
	}
	if scanReport.Target != target {
		return fmt.Errorf("scan ID %d belongs to %s, not %s", id, scanReport.Target, target)
	}
	return printStoredReport(scanReport, jsonOutput)
}

// printStoredReport writes a stored report to stdout as JSON or text.
func printStoredReport(scanReport *model.ScanReport, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scanReport)
	}

	_, err := report.NewTextWriter(os.Stdout).Write(scanReport)
	return err
}

// formatRiskSummary formats a risk summary map into a short string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	parts := []string{}
	if c := summary["critical"]; c > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", c))
	}
	if h := summary["high"]; h > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", h))
	}
	if m := summary["medium"]; m > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", m))
	}
	if l := summary["low"]; l > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", l))
	}
	if i := summary["info"]; i > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", i))
	}

	if len(parts) == 0 {
		return "No findings"
	}

	return strings.Join(parts, " ")
}
