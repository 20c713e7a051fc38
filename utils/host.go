package utils

import "strings"

// HostKind classifies what a request's Host header resolves to.
type HostKind int

const (
	// HostNone: the host is the bare base domain, or not under it at all.
	HostNone HostKind = iota
	// HostReserved: a subdomain we never treat as a tenant (www).
	HostReserved
	// HostTenant: a candidate tenant subdomain. The candidate is untrusted
	// text until the tenant directory confirms it exists.
	HostTenant
)

// HostResolution is the outcome of ResolveHost.
type HostResolution struct {
	Kind      HostKind
	Subdomain string
}

// HostConfig drives subdomain extraction. BaseDomain may carry a port
// ("localhost:3000"), in which case hosts are compared port-inclusive.
// PlatformSuffixes lists multi-segment hosting roots (".vercel.app") where
// the deployment root is itself a subdomain of the suffix, so exactly one
// leading label is stripped instead of the configured base.
type HostConfig struct {
	BaseDomain       string
	PlatformSuffixes []string
}

// ResolveHost maps a raw Host header to {none, reserved, tenant}. Hosts that
// do not end in the base domain (or a platform suffix) resolve to none
// unconditionally; substring matches are never enough.
func ResolveHost(host string, cfg HostConfig) HostResolution {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || cfg.BaseDomain == "" {
		return HostResolution{Kind: HostNone}
	}

	base := strings.ToLower(cfg.BaseDomain)
	if host == base {
		return HostResolution{Kind: HostNone}
	}
	if strings.HasSuffix(host, "."+base) {
		return classifyLabel(strings.TrimSuffix(host, "."+base))
	}

	for _, suffix := range cfg.PlatformSuffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" || !strings.HasSuffix(host, suffix) {
			continue
		}
		// host is e.g. partner1.myapp.vercel.app: the base there is
		// myapp.vercel.app, so only the first label is the candidate.
		suffixLabels := len(strings.Split(strings.Trim(suffix, "."), "."))
		parts := strings.Split(host, ".")
		if len(parts) <= suffixLabels+1 {
			// host is the deployment root itself
			return HostResolution{Kind: HostNone}
		}
		return classifyLabel(parts[0])
	}

	return HostResolution{Kind: HostNone}
}

func classifyLabel(label string) HostResolution {
	switch label {
	case "":
		return HostResolution{Kind: HostNone}
	case "www":
		return HostResolution{Kind: HostReserved, Subdomain: "www"}
	default:
		return HostResolution{Kind: HostTenant, Subdomain: label}
	}
}

// HostAllowed reports whether host matches the allow-list: an exact entry or
// any subdomain of an entry. Used before resolution to stop header injection.
func HostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	for _, domain := range allowed {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
