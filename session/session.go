// Package session owns the authenticated session of a single origin. Each
// tenant origin has its own isolated storage partition; a session written on
// one origin is invisible on every other, and the only way tokens cross that
// boundary is the explicit transfer handoff.
package session

import "github.com/dashlytic/go-tenant-session/users"

// Session is the in-memory view of the current origin's session.
// Authenticated may be true while User is still nil: on rehydration the store
// reports authenticated as soon as a persisted access token exists, before
// the profile refetch completes. Calls made in that window fail closed with
// 401 rather than silently succeed.
type Session struct {
	AccessToken   string
	RefreshToken  string
	User          *users.User
	Authenticated bool
}
