package probe

import "testing"

// TestTargetHost tests hostname extraction from the target forms a
// probe accepts.
func TestTargetHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"full url", "https://example.com/path?q=1", "example.com"},
		{"url with port", "https://example.com:8443/", "example.com"},
		{"host and port", "example.com:22", "example.com"},
		{"bare host", "example.com", "example.com"},
		{"surrounding whitespace", "  example.com  ", "example.com"},
		{"ipv6 with port", "[::1]:80", "::1"},
		{"bare ipv6", "::1", "::1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := targetHost(tt.target)
			if got != tt.want {
				t.Errorf("targetHost(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

// TestTargetAddr tests dial address construction, including default
// port handling.
func TestTargetAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		defaultPort int
		want        string
	}{
		{"url without port", "https://example.com", 443, "example.com:443"},
		{"url with explicit port", "https://example.com:8443", 443, "example.com:8443"},
		{"host with explicit port", "example.com:2222", 22, "example.com:2222"},
		{"bare host", "example.com", 22, "example.com:22"},
		{"bare ipv6", "::1", 22, "[::1]:22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := targetAddr(tt.target, tt.defaultPort)
			if got != tt.want {
				t.Errorf("targetAddr(%q, %d) = %q, want %q", tt.target, tt.defaultPort, got, tt.want)
			}
		})
	}
}
