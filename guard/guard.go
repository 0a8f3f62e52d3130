// Package guard gates navigation into protected views.
package guard

import (
	"github.com/dashlytic/go-tenant-session/login"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/tenant"
)

// Guard answers whether the current origin may render protected views.
// It checks session presence only; whether the session actually matches this
// origin's tenant is settled by the first authenticated API call, which 401s
// through the gateway's logout path if not.
type Guard struct {
	store  *session.Store
	origin tenant.Origin
}

func New(store *session.Store, origin tenant.Origin) *Guard {
	return &Guard{store: store, origin: origin}
}

// CanEnter reports whether a protected view may render. The access-token
// check doubles the authenticated flag to cover store initialization races;
// the call is synchronous and side-effect-free.
func (g *Guard) CanEnter() bool {
	sess := g.store.Get()
	return sess.Authenticated || sess.AccessToken != ""
}

// LoginRedirect returns where to send a rejected navigation.
func (g *Guard) LoginRedirect() string {
	return g.origin.TenantURL("", login.EntryPath)
}
