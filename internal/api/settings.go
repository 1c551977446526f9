package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/vecino/internal/settings"
)

// channelParam picks the channel query parameter, defaulting to the guided
// web channel. The channel decides which default document applies to bots
// that have no stored settings.
func channelParam(r *http.Request) string {
	if c := r.URL.Query().Get("channel"); c != "" {
		return c
	}
	return "web"
}

func handleGetSettings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		botID := chi.URLParam(r, "botID")
		writeJSON(w, deps.Settings.Load(botID, channelParam(r)))
	}
}

func handlePutSettings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		botID := chi.URLParam(r, "botID")

		var st settings.Settings
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if err := deps.Settings.Save(botID, st); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving settings: %v", err)
			return
		}
		writeJSON(w, st.Clamped())
	}
}

func handleResetSettings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		botID := chi.URLParam(r, "botID")

		defaults, err := deps.Settings.Reset(botID, channelParam(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "resetting settings: %v", err)
			return
		}
		writeJSON(w, defaults)
	}
}
