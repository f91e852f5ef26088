package config

// Profile holds per-target overrides for a single host.
// This allows customizing crawl behavior per target without repeating
// CLI flags.
type Profile struct {
	// MaxURLs overrides the global crawl budget for this target.
	// If zero, the global value is used.
	MaxURLs int `yaml:"maxUrls,omitempty"`

	// MaxDepth overrides the global traversal depth for this target.
	// If zero, the global value is used.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// Workers overrides the global worker count for this target.
	// If zero, the global value is used.
	Workers int `yaml:"workers,omitempty"`

	// RequestInterval overrides the per-origin request delay for this
	// target. If zero, the global value is used.
	RequestInterval Duration `yaml:"requestInterval,omitempty"`

	// AllowExternal disables domain scoping for this target.
	AllowExternal bool `yaml:"allowExternal,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// target.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .astra.yml profile file.
type File struct {
	// Targets maps hosts to their per-target profiles.
	// Keys should be the host without the protocol (e.g., "example.com").
	Targets map[string]Profile `yaml:"targets,omitempty"`

	// Defaults contains the profile applied to every target unless
	// overridden in the target-specific entry.
	Defaults Profile `yaml:"defaults,omitempty"`
}

// GetProfile returns the profile for a specific host.
// It merges the target-specific entry over the defaults.
func (cf *File) GetProfile(host string) Profile {
	// Start with defaults
	result := cf.Defaults

	// Override with target-specific values if present
	if p, ok := cf.Targets[host]; ok {
		if p.MaxURLs != 0 {
			result.MaxURLs = p.MaxURLs
		}
		if p.MaxDepth != 0 {
			result.MaxDepth = p.MaxDepth
		}
		if p.Workers != 0 {
			result.Workers = p.Workers
		}
		if !p.RequestInterval.IsZero() {
			result.RequestInterval = p.RequestInterval
		}
		if p.AllowExternal {
			result.AllowExternal = true
		}
		if len(p.Headers) > 0 {
			// Copy before merging so the shared Defaults map is not mutated
			merged := make(map[string]string, len(result.Headers)+len(p.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range p.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
