package probe

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// SSHProber detects SSH servers and fingerprints them: version banner,
// host key type, and host key fingerprint. It never authenticates.
//
// Design decision: The probe uses two connections because:
//  1. The version string arrives before key exchange, so a plain TCP
//     read captures it without negotiating anything
//  2. The host key only surfaces during a real handshake, which
//     consumes the banner
type SSHProber struct {
	// port is the port to probe when the target has no explicit one.
	port int

	// timeout bounds each connection attempt.
	timeout time.Duration
}

// SSHProberOption configures an SSHProber.
type SSHProberOption func(*SSHProber)

// WithSSHTimeout sets the connection timeout.
func WithSSHTimeout(timeout time.Duration) SSHProberOption {
	return func(p *SSHProber) {
		p.timeout = timeout
	}
}

// WithSSHPort overrides the default port 22.
func WithSSHPort(port int) SSHProberOption {
	return func(p *SSHProber) {
		p.port = port
	}
}

// NewSSHProber creates an SSH prober for port 22.
func NewSSHProber(opts ...SSHProberOption) *SSHProber {
	p := &SSHProber{
		port:    22,
		timeout: defaultProbeTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Protocol returns the probe name.
func (p *SSHProber) Protocol() string {
	return "ssh"
}

// DefaultPort returns the SSH port.
func (p *SSHProber) DefaultPort() int {
	return 22
}

// Probe reads the SSH version banner and captures the host key. A
// target that does not answer, or answers with something other than
// SSH, is an omission.
func (p *SSHProber) Probe(ctx context.Context, target string) (*model.ProbeResult, error) {
	result := model.NewProbeResult("ssh", p.port)

	host := targetHost(target)
	if host == "" {
		return nil, fmt.Errorf("ssh probe: no host in target %q", target)
	}
	addr := targetAddr(target, p.port)

	banner, ok := p.readBanner(ctx, addr)
	if !ok {
		return result, nil
	}

	result.Detected = true
	result.Banner = banner
	result.SetDetail("banner", banner)

	// SSH-2.0-OpenSSH_9.6p1 Ubuntu-3ubuntu13 carries the software
	// version after the second dash.
	if parts := strings.SplitN(banner, "-", 3); len(parts) == 3 {
		result.SetDetail("software", parts[2])
	}

	p.captureHostKey(ctx, result, addr)

	result.AddFinding(model.NewFinding("ssh_detected", "SSH service detected", banner, addr))

	return result, nil
}

// readBanner connects and reads the server's version line.
func (p *SSHProber) readBanner(ctx context.Context, addr string) (string, bool) {
	d := net.Dialer{Timeout: p.timeout}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", false
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return "", false
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", false
	}

	banner := strings.TrimSpace(line)
	if !strings.HasPrefix(banner, "SSH-") {
		return "", false
	}

	return banner, true
}

// captureHostKey runs a handshake far enough to see the host key. The
// handshake is expected to fail at authentication, since we offer no
// credentials; the key exchange has already completed by then.
func (p *SSHProber) captureHostKey(ctx context.Context, result *model.ProbeResult, addr string) {
	var hostKey ssh.PublicKey

	cfg := &ssh.ClientConfig{
		User: "probe",
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			hostKey = key
			return nil
		},
		Timeout: p.timeout,
	}

	d := net.Dialer{Timeout: p.timeout}
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, cfg)
	if err != nil {
		netConn.Close()
	} else {
		// The server accepted a connection with no credentials at all,
		// which is worth reporting on its own.
		result.SetDetail("accepts_unauthenticated", "true")
		go ssh.DiscardRequests(reqs)
		go discardChannels(chans)
		sshConn.Close()
	}

	if hostKey != nil {
		result.SetDetail("host_key_type", hostKey.Type())
		result.SetDetail("fingerprint", ssh.FingerprintSHA256(hostKey))
	}
}

// discardChannels rejects any channels the server tries to open during
// the brief window before the probe connection closes.
func discardChannels(chans <-chan ssh.NewChannel) {
	for ch := range chans {
		_ = ch.Reject(ssh.Prohibited, "probe connection")
	}
}
