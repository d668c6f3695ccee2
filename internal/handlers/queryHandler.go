package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/adevara/docqa/internal/adapter"
	"github.com/adevara/docqa/internal/api"
	"github.com/adevara/docqa/internal/events"
	"github.com/adevara/docqa/internal/rag"
	"github.com/adevara/docqa/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// Handler carries the injected services; routes are its methods so tests can
// construct one around fakes.
type Handler struct {
	service    rag.Service
	dispatcher *events.Dispatcher
}

func NewHandler(service rag.Service, dispatcher *events.Dispatcher) *Handler {
	return &Handler{service: service, dispatcher: dispatcher}
}

// HealthHandler godoc
// @Summary      Liveness probe
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

// OptionsHandler answers plain OPTIONS probes with 200. Preflight requests
// never reach it; the CORS layer on the router handles those and decorates
// this response's headers too.
func (h *Handler) OptionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// QueryHandler godoc
// @Summary      Ask a question against the indexed documents
// @Description  Embeds the question, retrieves matching passages, and returns a cited answer.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest   true  "The question"
// @Success      200      {object}  api.QueryResponse  "Answer with citations"
// @Failure      400      {object}  api.ErrorResponse  "Missing or empty query"
// @Failure      500      {object}  api.ErrorResponse  "A downstream dependency failed"
// @Router       /query [post]
func (h *Handler) QueryHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.QueryRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Query handler reader :", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Query Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Answer(request.Context(), requestData.Query)
	if err != nil {
		logRH.Warn("Query failed", "error:", err)
		WriteErrorResponse(w, statusForFault(err), err.Error())
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(result))
}
