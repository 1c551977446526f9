package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/kalambet/vecino/internal/orchestrator"
)

func handleChatMessage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req orchestrator.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		resp, err := deps.Orchestrator.Respond(r.Context(), req)
		if errors.Is(err, orchestrator.ErrEmptyMessage) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message must not be empty")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "responding failed: %v", err)
			return
		}

		writeJSON(w, resp)
	}
}
