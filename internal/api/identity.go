package api

import (
	"log/slog"
	"net/http"

	"github.com/kalambet/meishi/internal/profile"
)

func handleIdentityEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev profile.IdentityEvent
		if err := decodeBody(w, r, &ev); err != nil {
			writeError(w, r, err)
			return
		}
		if err := deps.Profiles.HandleIdentityEvent(r.Context(), ev); err != nil {
			writeError(w, r, err)
			return
		}
		slog.Info("identity event handled", "type", ev.Type, "subject", ev.Data.ID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
