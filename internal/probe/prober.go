package probe

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// Prober defines the interface for service-specific probes.
// Each probe implementation must provide this interface to be used
// in the scanning pipeline.
//
// Design decision: We use an interface rather than a concrete type because:
//  1. Probes differ wildly in what they inspect (sockets, DNS, TLS state)
//  2. Allows for easy mocking in tests
//  3. Pipeline can treat all probes uniformly
type Prober interface {
	// Probe inspects the target and reports what it observed.
	// A service that is absent or unreachable is not an error: the
	// result simply comes back with Detected false. Errors are
	// reserved for unusable targets.
	//
	// Implementations must respect context cancellation.
	Probe(ctx context.Context, target string) (*model.ProbeResult, error)

	// Protocol returns the probe name (e.g., "tls", "ssh", "port").
	Protocol() string

	// DefaultPort returns the default port for this probe, 0 when the
	// probe is not tied to a single port.
	DefaultPort() int
}

// defaultProbeTimeout bounds each network operation a probe performs.
const defaultProbeTimeout = 5 * time.Second

// targetHost extracts the bare hostname from a target that may be a
// full URL, a host:port pair, or a plain hostname.
func targetHost(target string) string {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if host, _, err := net.SplitHostPort(target); err == nil && host != "" {
		return host
	}
	return target
}

// targetAddr builds the host:port address a probe should dial. An
// explicit port in the target wins; otherwise defaultPort is used.
func targetAddr(target string, defaultPort int) string {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "://") {
		if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
			if p := u.Port(); p != "" {
				return net.JoinHostPort(u.Hostname(), p)
			}
			return net.JoinHostPort(u.Hostname(), strconv.Itoa(defaultPort))
		}
	}
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	return net.JoinHostPort(target, strconv.Itoa(defaultPort))
}
