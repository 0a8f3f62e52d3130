// Package login decides where an authenticated user lands. After the
// credential exchange it inspects the resolved tenant of the current origin
// and the user's organization memberships, then either stays put, hands the
// session off to another tenant origin, or asks the caller to present the
// organization selector.
package login

import (
	"context"

	"github.com/dashlytic/go-tenant-session/identity"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/tenant"
	"github.com/dashlytic/go-tenant-session/transfer"
	"github.com/dashlytic/go-tenant-session/users"
	"github.com/pkg/errors"
)

const (
	// HomePath is the landing path after a resolved login.
	HomePath = "/home"

	// EntryPath is the login entry point on the base origin.
	EntryPath = "/login"
)

// DecisionKind classifies a login outcome.
type DecisionKind string

const (
	// DecisionStay lands on Path on the current origin (in-app route change).
	DecisionStay DecisionKind = "stay"

	// DecisionTransfer hands the session to another origin; URL must be
	// navigated to with a full page load.
	DecisionTransfer DecisionKind = "transfer"

	// DecisionChoose presents the organization selector for Memberships.
	DecisionChoose DecisionKind = "choose"
)

// Decision is the outcome of a successful credential exchange.
type Decision struct {
	Kind        DecisionKind
	Path        string                         // stay decisions
	URL         string                         // transfer decisions
	Memberships []users.OrganizationMembership // choose decisions
}

// Orchestrator runs the post-login decision state machine for one origin.
type Orchestrator struct {
	identity identity.Service
	store    *session.Store
	origin   tenant.Origin
	handoff  *transfer.Handoff
}

// New creates an Orchestrator. All dependencies are required.
func New(identitySvc identity.Service, store *session.Store, origin tenant.Origin, handoff *transfer.Handoff) (*Orchestrator, error) {
	if identitySvc == nil {
		return nil, errors.New("[login.New] identity service is required")
	}
	if store == nil {
		return nil, errors.New("[login.New] store is required")
	}
	if handoff == nil {
		return nil, errors.New("[login.New] handoff is required")
	}
	return &Orchestrator{
		identity: identitySvc,
		store:    store,
		origin:   origin,
		handoff:  handoff,
	}, nil
}

// Login exchanges credentials, persists the session on the current origin,
// and returns the landing decision. A credential exchange failure surfaces
// the identity service's message to the caller and mutates nothing; it never
// triggers a transfer or redirect.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (Decision, error) {
	pair, err := o.identity.Login(ctx, email, password)
	if err != nil {
		return Decision{}, errors.Wrap(err, "[Orchestrator.Login] credential exchange")
	}

	if err := o.store.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return Decision{}, errors.Wrap(err, "[Orchestrator.Login] SetTokens")
	}

	user, err := o.identity.CurrentUser(ctx, pair.AccessToken)
	if err != nil {
		return Decision{}, errors.Wrap(err, "[Orchestrator.Login] CurrentUser")
	}
	if err := o.store.SetUser(user); err != nil {
		return Decision{}, errors.Wrap(err, "[Orchestrator.Login] SetUser")
	}

	return o.decide(user)
}

// decide implements the landing table over {current origin tenant,
// organization memberships}.
func (o *Orchestrator) decide(user *users.User) (Decision, error) {
	current := o.origin.Tenant()
	orgs := user.Organizations

	if current == "" {
		switch {
		case len(orgs) == 0:
			return Decision{Kind: DecisionStay, Path: HomePath}, nil
		case len(orgs) == 1:
			return o.towardMembership(&orgs[0])
		default:
			return Decision{Kind: DecisionChoose, Memberships: orgs}, nil
		}
	}

	// No organizations to validate against: degenerate but allowed.
	if len(orgs) == 0 {
		return Decision{Kind: DecisionStay, Path: HomePath}, nil
	}

	if user.HasTenant(current) {
		if err := o.store.SetLastTenant(current); err != nil {
			return Decision{}, errors.Wrap(err, "[Orchestrator.decide] SetLastTenant")
		}
		return Decision{Kind: DecisionStay, Path: HomePath}, nil
	}

	// Authenticated on a tenant the user does not belong to: move to the
	// first membership's origin instead.
	return o.towardMembership(user.PrimaryMembership())
}

// towardMembership lands on the membership's tenant origin, or stays on the
// current origin when the membership has no subdomain and none is resolved.
func (o *Orchestrator) towardMembership(m *users.OrganizationMembership) (Decision, error) {
	if m.TenantSubdomain == "" && o.origin.IsBase() {
		return Decision{Kind: DecisionStay, Path: HomePath}, nil
	}

	url, err := o.handoff.Encode(o.store.Get(), m.TenantSubdomain, HomePath)
	if err != nil {
		return Decision{}, errors.Wrap(err, "[Orchestrator.towardMembership] Encode")
	}
	return Decision{Kind: DecisionTransfer, URL: url}, nil
}

// Logout invalidates the session server-side (best effort), clears this
// origin's store, and returns the base origin's login URL. The returned URL
// never carries transfer material.
func (o *Orchestrator) Logout(ctx context.Context) (string, error) {
	sess := o.store.Get()
	if sess.AccessToken != "" {
		// Local teardown proceeds regardless of the server-side outcome.
		_ = o.identity.Logout(ctx, sess.AccessToken)
	}
	if err := o.store.Logout(); err != nil {
		return "", errors.Wrap(err, "[Orchestrator.Logout] store.Logout")
	}
	return o.origin.TenantURL("", EntryPath), nil
}
