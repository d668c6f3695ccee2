package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adevara/docqa/internal/api"
	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/internal/domain/faults"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, errorMessage string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Error: errorMessage})
}

// statusForFault keeps the HTTP mapping in one place: caller mistakes are
// 400s, everything downstream of us is a 500.
func statusForFault(err error) int {
	switch faults.KindOf(err) {
	case faults.Validation, faults.Event:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func validateContext(ctx context.Context) bool {
	log := logRH
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		log = log.With("traceId", trace)
	}
	if ctx.Err() != nil {
		log.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		log.Warn("context cancelled")
		return false
	default:
		return true

	}
}
