package probe

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// DNSProber collects the DNS records published for a target: addresses,
// aliases, mail exchangers, name servers, and TXT records. The records
// a site publishes are part of its attack surface inventory even though
// none of them is a vulnerability on its own.
type DNSProber struct {
	// resolver performs the lookups. Defaults to the system resolver.
	resolver *net.Resolver

	// timeout bounds each individual lookup.
	timeout time.Duration
}

// DNSProberOption configures a DNSProber.
type DNSProberOption func(*DNSProber)

// WithDNSTimeout sets the per-lookup timeout.
func WithDNSTimeout(timeout time.Duration) DNSProberOption {
	return func(p *DNSProber) {
		p.timeout = timeout
	}
}

// WithResolver substitutes the resolver, mainly for tests.
func WithResolver(r *net.Resolver) DNSProberOption {
	return func(p *DNSProber) {
		p.resolver = r
	}
}

// NewDNSProber creates a DNS prober using the system resolver.
func NewDNSProber(opts ...DNSProberOption) *DNSProber {
	p := &DNSProber{
		resolver: net.DefaultResolver,
		timeout:  defaultProbeTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Protocol returns the probe name.
func (p *DNSProber) Protocol() string {
	return "dns"
}

// DefaultPort returns the DNS port.
func (p *DNSProber) DefaultPort() int {
	return 53
}

// Probe looks up the target's DNS records. Record types the zone does
// not publish are omissions, not errors: a host with no MX simply gets
// no mx_records detail.
func (p *DNSProber) Probe(ctx context.Context, target string) (*model.ProbeResult, error) {
	result := model.NewProbeResult("dns", 53)

	host := targetHost(target)
	if host == "" {
		return nil, fmt.Errorf("dns probe: no host in target %q", target)
	}

	// IP targets have no forward records; a reverse lookup is the only
	// thing worth asking.
	if net.ParseIP(host) != nil {
		if names, err := p.lookupAddr(ctx, host); err == nil && len(names) > 0 {
			result.Detected = true
			result.SetDetail("ptr_records", strings.Join(names, ", "))
		}
		return result, nil
	}

	p.lookupAddresses(ctx, result, host)
	p.lookupCNAME(ctx, result, host)
	p.lookupMX(ctx, result, host)
	p.lookupNS(ctx, result, host)
	p.lookupTXT(ctx, result, host)

	return result, nil
}

// lookupCtx derives a bounded context for one lookup.
func (p *DNSProber) lookupCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *DNSProber) lookupAddresses(ctx context.Context, result *model.ProbeResult, host string) {
	ctx, cancel := p.lookupCtx(ctx)
	defer cancel()

	addrs, err := p.resolver.LookupHost(ctx, host)
	if err != nil || len(addrs) == 0 {
		return
	}

	var v4, v6 []string
	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			v4 = append(v4, addr)
		} else {
			v6 = append(v6, addr)
		}
	}

	sort.Strings(v4)
	sort.Strings(v6)

	result.Detected = true
	if len(v4) > 0 {
		result.SetDetail("a_records", strings.Join(v4, ", "))
	}
	if len(v6) > 0 {
		result.SetDetail("aaaa_records", strings.Join(v6, ", "))
	}
}

func (p *DNSProber) lookupCNAME(ctx context.Context, result *model.ProbeResult, host string) {
	ctx, cancel := p.lookupCtx(ctx)
	defer cancel()

	cname, err := p.resolver.LookupCNAME(ctx, host)
	if err != nil {
		return
	}

	// LookupCNAME echoes the queried name back when no alias exists.
	cname = strings.TrimSuffix(cname, ".")
	if cname == "" || strings.EqualFold(cname, host) {
		return
	}

	result.Detected = true
	result.SetDetail("cname", cname)
}

func (p *DNSProber) lookupMX(ctx context.Context, result *model.ProbeResult, host string) {
	ctx, cancel := p.lookupCtx(ctx)
	defer cancel()

	records, err := p.resolver.LookupMX(ctx, host)
	if err != nil || len(records) == 0 {
		return
	}

	entries := make([]string, 0, len(records))
	for _, mx := range records {
		entries = append(entries, fmt.Sprintf("%s (%d)", strings.TrimSuffix(mx.Host, "."), mx.Pref))
	}
	sort.Strings(entries)

	result.Detected = true
	result.SetDetail("mx_records", strings.Join(entries, ", "))
}

func (p *DNSProber) lookupNS(ctx context.Context, result *model.ProbeResult, host string) {
	ctx, cancel := p.lookupCtx(ctx)
	defer cancel()

	records, err := p.resolver.LookupNS(ctx, host)
	if err != nil || len(records) == 0 {
		return
	}

	entries := make([]string, 0, len(records))
	for _, ns := range records {
		entries = append(entries, strings.TrimSuffix(ns.Host, "."))
	}
	sort.Strings(entries)

	result.Detected = true
	result.SetDetail("ns_records", strings.Join(entries, ", "))
}

func (p *DNSProber) lookupTXT(ctx context.Context, result *model.ProbeResult, host string) {
	ctx, cancel := p.lookupCtx(ctx)
	defer cancel()

	records, err := p.resolver.LookupTXT(ctx, host)
	if err != nil || len(records) == 0 {
		return
	}

	sort.Strings(records)
	result.Detected = true
	result.SetDetail("txt_records", strings.Join(records, "; "))
}

func (p *DNSProber) lookupAddr(ctx context.Context, addr string) ([]string, error) {
	ctx, cancel := p.lookupCtx(ctx)
	defer cancel()

	names, err := p.resolver.LookupAddr(ctx, addr)
	if err != nil {
		return nil, err
	}

	for i, name := range names {
		names[i] = strings.TrimSuffix(name, ".")
	}
	sort.Strings(names)
	return names, nil
}
