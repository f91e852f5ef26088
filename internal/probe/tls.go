package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// certExpiryWarning is how close to expiry a certificate has to be
// before we flag it. Two weeks leaves time to renew before browsers
// start rejecting the site.
const certExpiryWarning = 14 * 24 * time.Hour

// TLSProber performs a TLS handshake with the target and inspects the
// negotiated protocol version and the certificate the server presents.
//
// Design decision: Certificate verification is disabled and old protocol
// versions are enabled in the handshake config because:
//  1. The probe must report what the server serves, including broken
//     chains and self-signed certificates, not refuse to look at them
//  2. Detecting a server that still negotiates TLS 1.0 requires offering it
//  3. Nothing sensitive is sent over the probe connection
type TLSProber struct {
	// port is the port to probe when the target has no explicit one.
	port int

	// timeout bounds the dial and handshake.
	timeout time.Duration
}

// TLSProberOption configures a TLSProber.
type TLSProberOption func(*TLSProber)

// WithTLSTimeout sets the handshake timeout.
func WithTLSTimeout(timeout time.Duration) TLSProberOption {
	return func(p *TLSProber) {
		p.timeout = timeout
	}
}

// WithTLSPort overrides the default port 443.
func WithTLSPort(port int) TLSProberOption {
	return func(p *TLSProber) {
		p.port = port
	}
}

// NewTLSProber creates a TLS prober for port 443.
func NewTLSProber(opts ...TLSProberOption) *TLSProber {
	p := &TLSProber{
		port:    443,
		timeout: defaultProbeTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Protocol returns the probe name.
func (p *TLSProber) Protocol() string {
	return "tls"
}

// DefaultPort returns the HTTPS port.
func (p *TLSProber) DefaultPort() int {
	return 443
}

// Probe performs a TLS handshake and records the certificate details.
// A target that does not speak TLS is an omission, not an error.
func (p *TLSProber) Probe(ctx context.Context, target string) (*model.ProbeResult, error) {
	result := model.NewProbeResult("tls", p.port)

	host := targetHost(target)
	if host == "" {
		return nil, fmt.Errorf("tls probe: no host in target %q", target)
	}
	addr := targetAddr(target, p.port)

	cfg := &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: true,             //nolint:gosec // the probe reports whatever certificate is served
		MinVersion:         tls.VersionTLS10, //nolint:gosec // offered deliberately to detect legacy servers
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.timeout},
		Config:    cfg,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return result, nil
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()

	result.Detected = true
	result.SetDetail("tls_version", tls.VersionName(state.Version))
	result.SetDetail("cipher_suite", tls.CipherSuiteName(state.CipherSuite))

	if state.Version < tls.VersionTLS12 {
		result.AddFinding(model.NewFinding("tls_legacy_version",
			"Legacy TLS version negotiated", tls.VersionName(state.Version), addr))
	}

	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		p.recordCertificate(result, cert)
		p.analyzeCertificate(result, cert, time.Now())
	}

	return result, nil
}

// recordCertificate copies the fields of the leaf certificate worth
// reporting into the probe details.
func (p *TLSProber) recordCertificate(result *model.ProbeResult, cert *x509.Certificate) {
	result.SetDetail("subject", cert.Subject.String())
	result.SetDetail("issuer", cert.Issuer.String())
	result.SetDetail("serial_number", cert.SerialNumber.String())
	result.SetDetail("not_before", cert.NotBefore.Format(time.RFC3339))
	result.SetDetail("not_after", cert.NotAfter.Format(time.RFC3339))

	if len(cert.DNSNames) > 0 {
		result.SetDetail("dns_names", strings.Join(cert.DNSNames, ", "))
	}
}

// analyzeCertificate checks the leaf certificate's validity window and
// adds findings for expired or soon-to-expire certificates.
func (p *TLSProber) analyzeCertificate(result *model.ProbeResult, cert *x509.Certificate, now time.Time) {
	remaining := cert.NotAfter.Sub(now)
	days := int(remaining.Hours() / 24)
	result.SetDetail("days_until_expiry", fmt.Sprintf("%d", days))

	switch {
	case now.After(cert.NotAfter):
		result.AddFinding(model.NewFinding("tls_certificate_expired",
			"TLS certificate has expired", cert.NotAfter.Format(time.RFC3339), "TLS certificate"))
	case remaining < certExpiryWarning:
		result.AddFinding(model.NewFinding("tls_certificate_expiring",
			"TLS certificate expires soon", cert.NotAfter.Format(time.RFC3339), "TLS certificate"))
	}

	if now.Before(cert.NotBefore) {
		result.AddFinding(model.NewFinding("tls_certificate_not_yet_valid",
			"TLS certificate is not yet valid", cert.NotBefore.Format(time.RFC3339), "TLS certificate"))
	}
}
