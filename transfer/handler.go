package transfer

import (
	"net/http"

	"github.com/dashlytic/go-tenant-session/session"
	"github.com/rs/zerolog/log"
)

// ReceiveHandler serves the dedicated receiving route on a tenant origin.
// It consumes the transfer payload exactly once and answers with a redirect
// to the clean destination path, so the signed payload never survives in the
// address bar or navigation history. Any decode failure falls back to the
// login entry point with no session persisted.
func ReceiveHandler(h *Handoff, store *session.Store, loginPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		received, err := h.Decode(r.URL.Query(), store)
		if err != nil {
			log.Warn().Err(err).Msg("transfer decode failed, falling back to login")
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, received.RedirectPath, http.StatusSeeOther)
	}
}
