// Package tenant derives tenant identity from access origins. Each tenant of
// the platform is served from its own subdomain of the base domain; the first
// hostname label identifies the organization, and the base domain carries no
// tenant at all.
package tenant

import "strings"

// Labels that never identify a tenant when they appear first in a hostname.
var reservedLabels = map[string]struct{}{
	"localhost": {},
	"www":       {},
}

// Resolve extracts the tenant subdomain from a hostname. It returns "" when
// the hostname carries no tenant: single-label hosts, reserved first labels
// and purely numeric labels (bare IPv4 octets). A port suffix is stripped
// before splitting and never treated as part of a label.
func Resolve(hostname string) string {
	host, _ := splitPort(hostname)
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}
	candidate := labels[0]
	if _, reserved := reservedLabels[candidate]; reserved {
		return ""
	}
	if candidate == "" || numeric(candidate) {
		return ""
	}
	return candidate
}

// BaseOrigin removes the tenant label from a hostname, preserving any port.
// Hostnames that resolve to no tenant are returned unchanged.
func BaseOrigin(hostname string) string {
	if Resolve(hostname) == "" {
		return hostname
	}
	host, port := splitPort(hostname)
	base := host[strings.Index(host, ".")+1:]
	if port != "" {
		return base + ":" + port
	}
	return base
}

func splitPort(hostname string) (host, port string) {
	if i := strings.LastIndex(hostname, ":"); i >= 0 {
		return hostname[:i], hostname[i+1:]
	}
	return hostname, ""
}

func numeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
