package users

// User is an immutable snapshot of the authenticated user as returned by the
// identity service. It is fetched after authentication and refreshed on
// demand; this client never mutates it.
type User struct {
	ID            string                   `json:"id,omitempty"`
	Email         string                   `json:"email,omitempty"`
	DisplayName   string                   `json:"full_name,omitempty"`
	Organizations []OrganizationMembership `json:"organizations,omitempty"`
}

// OrganizationMembership describes the user's place in one organization.
// At most one membership exists per organization ID. TenantSubdomain is empty
// for organizations that have not claimed a subdomain.
type OrganizationMembership struct {
	OrganizationID   string `json:"org_id"`
	OrganizationName string `json:"org_name"`
	TenantSubdomain  string `json:"subdomain,omitempty"`
	Role             string `json:"role"`
}

// HasTenant reports whether the user belongs to the organization served from
// the given tenant subdomain.
func (u *User) HasTenant(subdomain string) bool {
	return u.MembershipFor(subdomain) != nil
}

// MembershipFor returns the membership whose organization is served from the
// given tenant subdomain, or nil.
func (u *User) MembershipFor(subdomain string) *OrganizationMembership {
	if u == nil || subdomain == "" {
		return nil
	}
	for i := range u.Organizations {
		if u.Organizations[i].TenantSubdomain == subdomain {
			return &u.Organizations[i]
		}
	}
	return nil
}

// PrimaryMembership returns the membership used when a single destination has
// to be chosen among several. The policy is identity-service list order; it
// lives here so a stable server-side sort key can be adopted in one place.
func (u *User) PrimaryMembership() *OrganizationMembership {
	if u == nil || len(u.Organizations) == 0 {
		return nil
	}
	return &u.Organizations[0]
}
