package api

import (
	"encoding/json"
	"net/http"

	"github.com/kalambet/vecino/internal/intent"
)

// PatternConfig is the wire form of a classifier pattern.
type PatternConfig struct {
	Intent     string   `json:"intent"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

var knownIntents = map[intent.Name]bool{
	intent.FAQ:       true,
	intent.RAG:       true,
	intent.Handoff:   true,
	intent.Smalltalk: true,
}

func handleSwapPatterns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var configs []PatternConfig
		if err := json.NewDecoder(r.Body).Decode(&configs); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(configs) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "at least one pattern is required")
			return
		}

		patterns := make([]intent.Pattern, 0, len(configs))
		for i, c := range configs {
			name := intent.Name(c.Intent)
			if !knownIntents[name] {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "pattern %d: unknown intent %q", i, c.Intent)
				return
			}
			if len(c.Keywords) == 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "pattern %d: keywords are required", i)
				return
			}
			patterns = append(patterns, intent.Pattern{
				Intent:     name,
				Keywords:   c.Keywords,
				Confidence: c.Confidence,
			})
		}

		deps.Orchestrator.SwapPatterns(patterns)
		writeJSON(w, map[string]any{
			"status":   "updated",
			"patterns": len(patterns),
		})
	}
}

func handleReindex(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Reload == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "no knowledge sources configured")
			return
		}

		entries, err := deps.Reload()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reloading knowledge: %v", err)
			return
		}

		deps.Orchestrator.Reindex(entries)
		writeJSON(w, map[string]any{
			"status":  "reindexed",
			"entries": len(entries),
		})
	}
}
