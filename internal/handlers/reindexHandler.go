package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/adevara/docqa/internal/api"
	"github.com/adevara/docqa/internal/metrics"
)

// decodeEvents accepts both shapes a change feed sends: a single event
// object or an array of events.
func decodeEvents(body []byte) ([]api.ChangeEvent, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	if trimmed[0] == '[' {
		var batch []api.ChangeEvent
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, false
		}
		return batch, true
	}

	var single api.ChangeEvent
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, false
	}
	return []api.ChangeEvent{single}, true
}

// ReindexHandler godoc
// @Summary      Receive blob change notifications
// @Description  Handles the subscription validation handshake and reindexes or removes documents for blob created/deleted events. Events in a batch are processed independently.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.ReindexResponse    "All events processed"
// @Success      200  {object}  api.ValidationResponse "Subscription handshake echo"
// @Failure      500  {object}  api.ErrorResponse      "Malformed payload or one or more events failed"
// @Router       /reindex [post]
func (h *Handler) ReindexHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Reindex handler reader :", err)
		}
	}(request.Body)
	body, err := io.ReadAll(request.Body)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not read request body")
		return
	}

	// An unparseable body is a 500 like any other processing failure; only
	// the query route distinguishes caller mistakes.
	eventList, ok := decodeEvents(body)
	if !ok {
		logRH.Warn("Bad Reindex Request", "body length:", len(body))
		WriteErrorResponse(w, http.StatusInternalServerError, "Invalid event payload")
		return
	}

	validation, failures := h.dispatcher.Dispatch(request.Context(), eventList)
	for range failures {
		metrics.IncrementEventFailures()
	}

	if validation != nil {
		writeJsonResponse(w, http.StatusOK, validation)
		return
	}

	if len(failures) > 0 {
		logRH.Error("Reindex batch had failures", "failed:", len(failures), "total:", len(eventList))
		WriteErrorResponse(w, http.StatusInternalServerError, failures[0].Error())
		return
	}

	writeJsonResponse(w, http.StatusOK, api.ReindexResponse{Message: "Reindexing complete"})
}
