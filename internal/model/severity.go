package model

// Severity represents the risk level of a security finding.
// This allows categorizing findings by their potential impact on the
// scanned service.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct security impact.
	// Examples: detected services, external links, DNS records.
	// These describe the attack surface without implying a weakness.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: version banners in Server or X-Powered-By headers.
	// These help an attacker target known vulnerabilities but are not
	// exploitable by themselves.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: missing browser hardening headers, plaintext login protocols.
	// These weaken defenses against common attack classes.
	SeverityMedium

	// SeverityHigh indicates serious issues that significantly increase risk.
	// Examples: remote desktop or database ports open to the network,
	// legacy TLS versions, certificates about to expire.
	SeverityHigh

	// SeverityCritical indicates severe issues requiring immediate attention.
	// Examples: expired TLS certificates, Telnet exposed to the network.
	// These findings usually mean active exposure right now.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across the
// application.
//
// Design decision: We use a map rather than embedding severity in each
// finding site because:
// 1. It allows updating risk assessments without touching probe code
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - Active exposure
	"tls_certificate_expired": {
		Severity:       SeverityCritical,
		Impact:         "The TLS certificate has expired. Browsers warn users away and clients that skip verification are open to interception.",
		Recommendation: "Renew the certificate immediately and automate renewal, for example with ACME.",
	},
	"telnet_open": {
		Severity:       SeverityCritical,
		Impact:         "Telnet transmits credentials and sessions in plaintext and is a common target for credential stuffing.",
		Recommendation: "Disable Telnet and use SSH for remote administration.",
	},

	// HIGH - Significant risk
	"tls_certificate_expiring": {
		Severity:       SeverityHigh,
		Impact:         "The TLS certificate expires within two weeks. An unnoticed expiry causes an outage and security warnings.",
		Recommendation: "Renew the certificate now and set up automated renewal with monitoring.",
	},
	"tls_legacy_version": {
		Severity:       SeverityHigh,
		Impact:         "The server negotiated TLS 1.1 or older, which has known cryptographic weaknesses.",
		Recommendation: "Disable TLS 1.0 and 1.1; require TLS 1.2 or newer.",
	},
	"rdp_open": {
		Severity:       SeverityHigh,
		Impact:         "Remote Desktop is reachable from the network and is a frequent entry point for brute force and exploits.",
		Recommendation: "Restrict RDP to a VPN or bastion host and enforce network level authentication.",
	},
	"vnc_open": {
		Severity:       SeverityHigh,
		Impact:         "VNC is reachable from the network; many deployments use weak or no authentication.",
		Recommendation: "Tunnel VNC over SSH or a VPN and require strong authentication.",
	},
	"smb_open": {
		Severity:       SeverityHigh,
		Impact:         "SMB file sharing is exposed to the network, a historically exploited surface.",
		Recommendation: "Block SMB at the network boundary; it should never face the internet.",
	},
	"mysql_open": {
		Severity:       SeverityHigh,
		Impact:         "A database port answers from the network, exposing authentication and the data behind it.",
		Recommendation: "Bind the database to localhost or a private network and restrict access by firewall.",
	},

	// MEDIUM - Weakened defenses
	"tls_certificate_not_yet_valid": {
		Severity:       SeverityMedium,
		Impact:         "The TLS certificate's validity window has not started, so clients with correct clocks reject it.",
		Recommendation: "Check the server clock and reissue the certificate with a correct validity window.",
	},
	"missing_csp": {
		Severity:       SeverityMedium,
		Impact:         "Without a Content-Security-Policy, injected scripts run unrestricted, making XSS far more damaging.",
		Recommendation: "Add a Content-Security-Policy header, starting with default-src 'self'.",
	},
	"missing_x_frame_options": {
		Severity:       SeverityMedium,
		Impact:         "Without X-Frame-Options the site can be embedded in hostile frames for clickjacking.",
		Recommendation: "Add X-Frame-Options: DENY or a frame-ancestors CSP directive.",
	},
	"missing_hsts": {
		Severity:       SeverityMedium,
		Impact:         "Without Strict-Transport-Security, first visits over HTTP can be downgraded or intercepted.",
		Recommendation: "Add a Strict-Transport-Security header with a max-age of at least six months.",
	},
	"ftp_open": {
		Severity:       SeverityMedium,
		Impact:         "FTP transmits credentials in plaintext unless explicitly configured for TLS.",
		Recommendation: "Replace FTP with SFTP or FTPS, or restrict it to trusted networks.",
	},
	"pptp_open": {
		Severity:       SeverityMedium,
		Impact:         "PPTP VPN uses broken authentication (MS-CHAPv2) and can be cracked offline.",
		Recommendation: "Replace PPTP with a modern VPN such as WireGuard or IKEv2.",
	},
	"http_proxy_open": {
		Severity:       SeverityMedium,
		Impact:         "An HTTP proxy port answers from the network; open proxies are abused for relaying attacks.",
		Recommendation: "Require authentication on the proxy or restrict it to internal clients.",
	},

	// LOW - Information leakage
	"missing_x_content_type_options": {
		Severity:       SeverityLow,
		Impact:         "Without X-Content-Type-Options browsers may MIME-sniff responses into executable types.",
		Recommendation: "Add X-Content-Type-Options: nosniff.",
	},
	"server_version_disclosure": {
		Severity:       SeverityLow,
		Impact:         "The Server header reveals software and version, letting attackers select known exploits.",
		Recommendation: "Configure the web server to omit or genericize the Server header.",
	},
	"powered_by_disclosure": {
		Severity:       SeverityLow,
		Impact:         "The X-Powered-By header reveals the application platform and version.",
		Recommendation: "Remove the X-Powered-By header in the application or proxy configuration.",
	},

	// INFO - Attack surface inventory
	"open_port": {
		Severity:       SeverityInfo,
		Impact:         "A TCP service answers on this port.",
		Recommendation: "Confirm the service is intended to be reachable and close it otherwise.",
	},
	"ssh_detected": {
		Severity:       SeverityInfo,
		Impact:         "An SSH service answers. The banner and host key identify the deployment.",
		Recommendation: "Keep SSH patched, prefer key-based authentication, and disable root login.",
	},
	"external_link": {
		Severity:       SeverityInfo,
		Impact:         "The site links off its own domain. Each external dependency is outside this site's control.",
		Recommendation: "Review external links periodically for takeovers and dead targets.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in
// the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
