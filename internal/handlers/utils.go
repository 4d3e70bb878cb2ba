package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/voicedesk/orchestrator/internal/adapter"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

var logH = logger_i.NewLogger("handlers")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// too late for a clean status code, just log it
		logH.Error("error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}
