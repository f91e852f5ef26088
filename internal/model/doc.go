// Package model defines the core data structures shared across Astra.
//
// This package contains the following main types:
//   - ScanReport: The aggregated result of crawling and probing a target
//   - ProbeResult: What a single protocol probe observed
//   - Finding: One security observation with severity and guidance
//   - Severity: The risk scale findings are ranked on
//
// Design decision: We keep these types in their own package to avoid
// circular dependencies. Probes produce results, the pipeline aggregates
// them, and report writers render them; centralizing the shared types
// keeps those packages independent of each other.
//
// The models are designed to be serializable to JSON for report output
// and database storage.
package model
