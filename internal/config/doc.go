// Package config provides configuration structures and utilities for Astra.
// It defines the main options for crawling, network probes, and report
// generation, plus per-target profile loading from YAML.
package config
