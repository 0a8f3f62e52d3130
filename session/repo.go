package session

import "github.com/dashlytic/go-tenant-session/users"

// Record is the persisted session layout: a single serialized record per
// origin, plus a separate last-known-tenant key kept for UI convenience only.
type Record struct {
	AccessToken   string      `json:"access_token"`
	RefreshToken  string      `json:"refresh_token"`
	User          *users.User `json:"user,omitempty"`
	Authenticated bool        `json:"is_authenticated"`
}

// Repo abstracts the durable per-origin storage behind a Store.
type Repo interface {
	// Load returns the persisted record for an origin, or errors.ErrNotFound
	Load(origin string) (*Record, error)

	// Save overwrites the record for an origin; the write is atomic
	Save(origin string, record *Record) error

	// Delete removes the record for an origin; absent records are not an error
	Delete(origin string) error

	// LoadLastTenant returns the last known tenant subdomain, "" if unset
	LoadLastTenant(origin string) (string, error)

	// SaveLastTenant stores the last known tenant subdomain
	SaveLastTenant(origin, subdomain string) error
}
