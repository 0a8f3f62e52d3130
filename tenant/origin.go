package tenant

// Origin identifies the scheme and host the application was loaded from.
// It is derived from the access URL at startup, never persisted.
type Origin struct {
	Scheme string // "http" or "https"
	Host   string // hostname with optional port, e.g. "acme.localhost:3000"
}

// Tenant returns the tenant subdomain of this origin, or "" on the base origin.
func (o Origin) Tenant() string {
	return Resolve(o.Host)
}

// Base returns this origin's host with any tenant label removed, port preserved.
func (o Origin) Base() string {
	return BaseOrigin(o.Host)
}

// IsBase reports whether this origin is the base (non-tenant) origin.
func (o Origin) IsBase() bool {
	return o.Tenant() == ""
}

// TenantURL composes a full URL on the given tenant's origin. An empty
// tenantID targets the base origin. The path must start with "/".
func (o Origin) TenantURL(tenantID, path string) string {
	scheme := o.Scheme
	if scheme == "" {
		scheme = "http"
	}
	if tenantID == "" {
		return scheme + "://" + o.Base() + path
	}
	return scheme + "://" + tenantID + "." + o.Base() + path
}

// URL composes a full URL on this origin itself.
func (o Origin) URL(path string) string {
	scheme := o.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + o.Host + path
}
