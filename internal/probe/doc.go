// Package probe provides service-specific probes for inspecting the
// network surface of a scan target.
//
// # Architecture
//
// This package implements the Prober interface for each supported
// check, allowing the pipeline to execute probes in a uniform way.
//
// Design decision: Each probe is implemented as a separate type rather
// than one generic prober because:
//  1. What a probe inspects varies significantly (sockets, DNS, TLS state)
//  2. Type safety - each probe can carry probe-specific configuration
//  3. Easier testing - each probe can be tested in isolation
//
// # Supported Probes
//
// The following probes are currently supported:
//   - port: TCP connect scan of common service ports with banner capture
//   - dns: address, alias, mail, name server, and TXT record inventory
//   - tls: certificate details, validity window, and protocol version
//   - ssh (port 22): version banner and host key fingerprint
//   - headers: security header and information disclosure checks
//
// # Usage
//
// Each probe implements the Prober interface:
//
//	prober := probe.NewTLSProber()
//	result, err := prober.Probe(ctx, "example.com")
//
// A service that is absent or unreachable is reported with Detected
// false, not as an error. Errors are reserved for unusable targets.
//
// # Security Considerations
//
// All probes are designed for auditing targets you are authorized to
// assess:
//   - Read-only operations, no exploitation or credential guessing
//   - Timeout protection prevents indefinite hangs
//   - Port scanning concurrency is deliberately modest
package probe
