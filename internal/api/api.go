// Package api exposes the chat pipeline and its administration endpoints
// over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/vecino/internal/orchestrator"
	"github.com/kalambet/vecino/internal/retrieval"
	"github.com/kalambet/vecino/internal/settings"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps carries the services the HTTP surface operates on. Reload rebuilds
// the knowledge base from the configured sources; when nil the reindex
// endpoint is unavailable.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Settings     *settings.Store
	Reload       func() ([]retrieval.Entry, error)
}

// NewHandler returns the HTTP handler for the chat service.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Post("/chat/message", handleChatMessage(deps))
	r.Get("/chatbots/{botID}/settings", handleGetSettings(deps))
	r.Put("/chatbots/{botID}/settings", handlePutSettings(deps))
	r.Post("/chatbots/{botID}/settings/reset", handleResetSettings(deps))
	r.Post("/admin/patterns", handleSwapPatterns(deps))
	r.Post("/admin/reindex", handleReindex(deps))
	r.Get("/health", handleHealth(deps))

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":            "ok",
			"knowledge_entries": deps.Orchestrator.KnowledgeSize(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
