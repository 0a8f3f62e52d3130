// Package transfer moves an authenticated session across tenant origins.
// Origins do not share storage, so the sending side encodes the session into
// a signed, short-lived URL payload and the receiving side consumes it exactly
// once, rehydrating its own session store. The payload is never logged and is
// stripped from the visible URL before control returns to the application.
package transfer

import (
	"encoding/json"
	"net/url"
	"time"

	apperrors "github.com/dashlytic/go-tenant-session/internal/errors"
	"github.com/dashlytic/go-tenant-session/session"
	"github.com/dashlytic/go-tenant-session/tenant"
	"github.com/dashlytic/go-tenant-session/users"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	// QueryParam carries the signed payload on the receiving route.
	QueryParam = "transfer"

	// DefaultRedirectPath is where a transfer lands when the sender named no path.
	DefaultRedirectPath = "/home"
)

// transferClaims is the signed payload. Token material lives only inside the
// signature-protected body, never as bare query parameters.
type transferClaims struct {
	AccessToken  string `json:"tok"`
	RefreshToken string `json:"rtok"`
	UserSnapshot string `json:"usr,omitempty"` // JSON-encoded users.User, optional
	RedirectPath string `json:"redirect,omitempty"`
	jwtlib.RegisteredClaims
}

// Handoff encodes and decodes one-shot session transfers for one deployment.
// All tenant origins share the signing key; the TTL bounds how long a
// transfer URL stays usable in history or referrer logs.
type Handoff struct {
	key     []byte
	ttl     time.Duration
	route   string
	origin  tenant.Origin
	replays *replayStore
}

// Config is the subset of configuration a Handoff needs.
type Config interface {
	GetTransferKey() []byte
	GetTransferTTL() time.Duration
	GetTransferRoute() string
}

// New creates a Handoff bound to the current origin.
func New(cfg Config, origin tenant.Origin) *Handoff {
	return &Handoff{
		key:     cfg.GetTransferKey(),
		ttl:     cfg.GetTransferTTL(),
		route:   cfg.GetTransferRoute(),
		origin:  origin,
		replays: newReplayStore(),
	}
}

// Encode builds the transfer URL targeting the given tenant's origin. An
// empty tenantID targets the base origin. Navigation to the returned URL must
// be a full page load; the destination runs in its own storage partition.
func (h *Handoff) Encode(sess session.Session, tenantID, redirectPath string) (string, error) {
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return "", errors.Wrap(apperrors.ErrMissingTokens, "[Handoff.Encode]")
	}

	now := NowTimeFunc()
	claims := transferClaims{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		RedirectPath: redirectPath,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(h.ttl)),
		},
	}

	if sess.User != nil {
		snapshot, err := json.Marshal(sess.User)
		if err != nil {
			return "", errors.Wrap(err, "[Handoff.Encode] marshal user snapshot")
		}
		claims.UserSnapshot = string(snapshot)
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(h.key)
	if err != nil {
		return "", errors.Wrap(err, "[Handoff.Encode] sign")
	}

	return h.origin.TenantURL(tenantID, h.route) + "?" + QueryParam + "=" + url.QueryEscape(signed), nil
}

// Received is the outcome of a successful decode.
type Received struct {
	RedirectPath string
}

// Decode validates and consumes a transfer payload from the receiving route's
// query parameters, then persists the token pair into the receiving origin's
// store. Any previously persisted session on that origin is cleared first.
// An unparseable user snapshot is non-fatal: the session proceeds without a
// cached user and a later profile fetch fills it in. Every other failure
// leaves the store untouched so the caller can fall back to login.
func (h *Handoff) Decode(params url.Values, store *session.Store) (Received, error) {
	raw := params.Get(QueryParam)
	if raw == "" {
		return Received{}, errors.Wrap(apperrors.ErrMissingTokens, "[Handoff.Decode] no payload")
	}

	var claims transferClaims
	_, err := jwtlib.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (any, error) {
		return h.key, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithTimeFunc(NowTimeFunc))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Received{}, errors.Wrap(apperrors.ErrTransferExpired, "[Handoff.Decode]")
		}
		return Received{}, errors.Wrap(apperrors.ErrMalformedTransfer, "[Handoff.Decode]")
	}

	if claims.AccessToken == "" || claims.RefreshToken == "" {
		return Received{}, errors.Wrap(apperrors.ErrMissingTokens, "[Handoff.Decode]")
	}

	if claims.ID == "" || claims.ExpiresAt == nil {
		return Received{}, errors.Wrap(apperrors.ErrMalformedTransfer, "[Handoff.Decode] missing transfer id or expiry")
	}
	if !h.replays.consume(claims.ID, claims.ExpiresAt.Time) {
		log.Warn().Str("transfer_id", claims.ID).Msg("transfer payload replayed")
		return Received{}, errors.Wrap(apperrors.ErrTransferReplayed, "[Handoff.Decode]")
	}

	// The receiving origin may hold a stale session from an earlier visit.
	if err := store.Logout(); err != nil {
		return Received{}, errors.Wrap(err, "[Handoff.Decode] clear stale session")
	}
	if err := store.SetTokens(claims.AccessToken, claims.RefreshToken); err != nil {
		return Received{}, errors.Wrap(err, "[Handoff.Decode] persist tokens")
	}

	if claims.UserSnapshot != "" {
		var user users.User
		if err := json.Unmarshal([]byte(claims.UserSnapshot), &user); err != nil {
			log.Warn().Str("transfer_id", claims.ID).Msg("unparseable user snapshot, deferring to profile fetch")
		} else if err := store.SetUser(&user); err != nil {
			return Received{}, errors.Wrap(err, "[Handoff.Decode] persist user")
		}
	}

	redirect := claims.RedirectPath
	if redirect == "" {
		redirect = DefaultRedirectPath
	}
	return Received{RedirectPath: redirect}, nil
}
