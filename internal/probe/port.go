package probe

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// commonPorts lists the TCP ports a default port probe checks, in
// ascending order. The selection covers the services most often left
// exposed on web-facing hosts.
var commonPorts = []int{
	21,   // FTP
	22,   // SSH
	23,   // Telnet
	25,   // SMTP
	53,   // DNS
	80,   // HTTP
	110,  // POP3
	143,  // IMAP
	443,  // HTTPS
	445,  // SMB
	993,  // IMAPS
	995,  // POP3S
	1723, // PPTP
	3306, // MySQL
	3389, // RDP
	5900, // VNC
	8080, // HTTP proxy
}

// serviceNames maps well-known ports to their service names for
// reporting. Ports outside the map are reported as "unknown".
var serviceNames = map[int]string{
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	143:  "imap",
	443:  "https",
	445:  "smb",
	993:  "imaps",
	995:  "pop3s",
	1723: "pptp",
	3306: "mysql",
	3389: "rdp",
	5900: "vnc",
	8080: "http-proxy",
}

// riskyPortFindings maps ports whose exposure is itself a finding to
// the finding type and title to report. Ports outside the map produce
// a generic informational open_port finding.
var riskyPortFindings = map[int]struct {
	findingType string
	title       string
}{
	21:   {"ftp_open", "FTP service exposed"},
	23:   {"telnet_open", "Telnet service exposed"},
	445:  {"smb_open", "SMB service exposed"},
	1723: {"pptp_open", "PPTP VPN service exposed"},
	3306: {"mysql_open", "MySQL service exposed"},
	3389: {"rdp_open", "Remote Desktop service exposed"},
	5900: {"vnc_open", "VNC service exposed"},
	8080: {"http_proxy_open", "HTTP proxy port open"},
}

// bannerPorts marks text protocols whose servers greet first, so a
// short read after connecting captures a version banner.
var bannerPorts = map[int]bool{
	21:  true, // FTP
	22:  true, // SSH
	25:  true, // SMTP
	110: true, // POP3
	143: true, // IMAP
}

// bannerReadTimeout bounds the banner read on an open port. Silent
// services should not hold a probe worker for the full dial timeout.
const bannerReadTimeout = 2 * time.Second

// PortProber performs a TCP connect scan against a set of ports.
// It reports which ports accept connections and flags services whose
// exposure is a security concern in itself.
//
// Design decision: We use plain TCP connects rather than raw sockets because:
//  1. No elevated privileges are required
//  2. A completed handshake is unambiguous evidence the service is up
//  3. The same code path works for every port
type PortProber struct {
	// ports is the set of ports to check.
	ports []int

	// timeout is the per-port dial timeout.
	timeout time.Duration

	// concurrency caps how many ports are checked at once.
	concurrency int

	// greeters marks ports whose service sends a banner first.
	greeters map[int]bool
}

// PortProberOption configures a PortProber.
type PortProberOption func(*PortProber)

// WithPorts overrides the default port set.
func WithPorts(ports []int) PortProberOption {
	return func(p *PortProber) {
		p.ports = ports
	}
}

// WithPortTimeout sets the per-port dial timeout.
func WithPortTimeout(timeout time.Duration) PortProberOption {
	return func(p *PortProber) {
		p.timeout = timeout
	}
}

// WithPortConcurrency caps how many ports are dialed concurrently.
//
// Design decision: The default of 10 is deliberately modest because:
//  1. Every connection consumes a file descriptor on both ends
//  2. Bursting hundreds of SYNs looks like an attack to IDS systems
//  3. The common-port table is small enough that throughput is not a concern
func WithPortConcurrency(n int) PortProberOption {
	return func(p *PortProber) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPortProber creates a port prober covering the common-port table.
func NewPortProber(opts ...PortProberOption) *PortProber {
	p := &PortProber{
		ports:       commonPorts,
		timeout:     defaultProbeTimeout,
		concurrency: 10,
		greeters:    bannerPorts,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Protocol returns the probe name.
func (p *PortProber) Protocol() string {
	return "port"
}

// DefaultPort returns 0; this probe covers a port set rather than a
// single service port.
func (p *PortProber) DefaultPort() int {
	return 0
}

// Probe checks each configured port on the target and records the open
// ones. Closed and filtered ports are omissions, not errors.
func (p *PortProber) Probe(ctx context.Context, target string) (*model.ProbeResult, error) {
	result := model.NewProbeResult("port", 0)

	host := targetHost(target)
	if host == "" {
		return nil, fmt.Errorf("port probe: no host in target %q", target)
	}

	var (
		mu      sync.Mutex
		open    []int
		banners = make(map[int]string)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, port := range p.ports {
		g.Go(func() error {
			banner, ok := p.probePort(ctx, host, port)
			if !ok {
				return nil
			}
			mu.Lock()
			open = append(open, port)
			if banner != "" {
				banners[port] = banner
			}
			mu.Unlock()
			return nil
		})
	}

	// Workers report closed ports as omissions, so Wait cannot fail.
	_ = g.Wait()

	if len(open) == 0 {
		return result, nil
	}

	sort.Ints(open)
	result.Detected = true

	openStrs := make([]string, 0, len(open))
	for _, port := range open {
		openStrs = append(openStrs, strconv.Itoa(port))
	}
	result.SetDetail("open_ports", strings.Join(openStrs, ", "))

	for _, port := range open {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		if banner, ok := banners[port]; ok {
			result.SetDetail(fmt.Sprintf("port_%d_banner", port), banner)
		}
		result.AddFinding(findingForPort(port, addr))
	}

	return result, nil
}

// findingForPort builds the finding an open port produces. Ports whose
// exposure is a known risk get their specific finding type; anything
// else is reported as an informational open port.
func findingForPort(port int, addr string) model.Finding {
	if risky, ok := riskyPortFindings[port]; ok {
		return model.NewFinding(risky.findingType, risky.title, strconv.Itoa(port), addr)
	}
	return model.NewFinding("open_port", "Open TCP port",
		fmt.Sprintf("%d (%s)", port, serviceName(port)), addr)
}

// probePort dials one port. It returns ok false when the port is
// closed or filtered, and a banner when the service greeted us.
func (p *PortProber) probePort(ctx context.Context, host string, port int) (banner string, ok bool) {
	d := net.Dialer{Timeout: p.timeout}

	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return "", false
	}
	defer conn.Close()

	if !p.greeters[port] {
		return "", true
	}

	if err := conn.SetReadDeadline(time.Now().Add(bannerReadTimeout)); err != nil {
		return "", true
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		// Open but silent. The connection itself is the observation.
		return "", true
	}

	return strings.TrimSpace(line), true
}

// serviceName resolves a port to its well-known service name.
func serviceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "unknown"
}
