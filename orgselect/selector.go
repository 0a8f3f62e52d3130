// Package orgselect is the decision point behind the organization chooser,
// shown when a login on the base origin cannot uniquely resolve a tenant.
package orgselect

import (
	"github.com/dashlytic/go-tenant-session/login"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/transfer"
	"github.com/dashlytic/go-tenant-session/users"
	"github.com/pkg/errors"
)

// Selector turns a membership choice into a navigation decision.
type Selector struct {
	store   *session.Store
	handoff *transfer.Handoff
}

// New creates a Selector over the base origin's store and handoff.
func New(store *session.Store, handoff *transfer.Handoff) (*Selector, error) {
	if store == nil {
		return nil, errors.New("[orgselect.New] store is required")
	}
	if handoff == nil {
		return nil, errors.New("[orgselect.New] handoff is required")
	}
	return &Selector{store: store, handoff: handoff}, nil
}

// Choose hands the session to the selected organization's tenant origin, or
// stays on the base origin when the organization has no subdomain.
func (s *Selector) Choose(m users.OrganizationMembership) (login.Decision, error) {
	if m.TenantSubdomain == "" {
		return login.Decision{Kind: login.DecisionStay, Path: login.HomePath}, nil
	}

	url, err := s.handoff.Encode(s.store.Get(), m.TenantSubdomain, login.HomePath)
	if err != nil {
		return login.Decision{}, errors.Wrap(err, "[Selector.Choose] Encode")
	}
	return login.Decision{Kind: login.DecisionTransfer, URL: url}, nil
}

// Skip lands on the base origin's home with no tenant selected. Downstream
// screens tolerate a null tenant context regardless of membership count.
func (s *Selector) Skip() login.Decision {
	return login.Decision{Kind: login.DecisionStay, Path: login.HomePath}
}
