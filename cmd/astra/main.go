// Package main provides the entry point for the Astra CLI.
//
// Astra is an attack surface assessment toolkit for web targets.
// It crawls a site within configurable bounds and probes the host's
// network services for exposure and misconfiguration.
//
// Usage:
//
//	astra scan <target>
//	astra crawl <url>
//
// See --help for all available options.
package main

// main is the entry point for Astra.
func main() {
	Execute()
}
