package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voicedesk/orchestrator/internal/adapter/utils"
	"github.com/voicedesk/orchestrator/internal/api"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// Turn godoc
// @Summary      Process one conversational turn
// @Description  Appends the utterance to the call, classifies intent, retrieves knowledge, generates the reply and evaluates handoff.
// @Tags         Calls
// @Accept       json
// @Produce      json
// @Param        callId   path      string           true  "Call ID"
// @Param        request  body      api.TurnRequest  true  "Caller utterance"
// @Success      200      {object}  callmodel.TurnResult
// @Failure      400      {object}  api.ErrorResponse
// @Router       /calls/{callId}/turn [post]
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	defer closeBody(r.Body)

	callId := utils.GetChiURLParam(r, "callId")
	if callId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "call id is required")
		return
	}

	var req api.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, callId, "bad turn request")
		return
	}

	result, err := h.engine.ProcessTurn(r.Context(), callId, req.Utterance)
	if err != nil {
		if errors.Is(err, kbmodel.ErrEmptyInput) {
			WriteErrorResponse(w, http.StatusBadRequest, callId, "utterance is empty")
			return
		}
		h.logger.Error("turn failed", "traceId", r.Context().Value(config.TRACE_ID_KEY), "callId", callId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, callId, "turn failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, result)
}

// EndCall godoc
// @Summary      End a call and destroy its state
// @Tags         Calls
// @Param        callId  path  string  true  "Call ID"
// @Success      204     "State destroyed"
// @Router       /calls/{callId} [delete]
func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	callId := utils.GetChiURLParam(r, "callId")
	if callId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "call id is required")
		return
	}

	if err := h.engine.EndCall(r.Context(), callId); err != nil {
		h.logger.Error("end call failed", "callId", callId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, callId, "could not end call")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
