package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voicedesk/orchestrator/internal/adapter"
	"github.com/voicedesk/orchestrator/internal/adapter/utils"
	"github.com/voicedesk/orchestrator/internal/api"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/internal/job"
)

// Reindex godoc
// @Summary      Trigger an asynchronous reindex
// @Description  Queues a background job that re-walks the document source; poll the returned job id for the outcome.
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        request  body      api.ReindexRequest  true  "Source override and full-reindex flag"
// @Success      202      {object}  api.ReindexResponse
// @Failure      503      {object}  api.ErrorResponse "Job queue is full"
// @Router       /reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	defer closeBody(r.Body)

	var req api.ReindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "bad reindex request")
		return
	}

	traceId, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeReindex,
		Source:      req.Source,
		FullReindex: req.FullReindex,
	}

	if err := h.jobs.Enqueue(r.Context(), newJob); err != nil {
		if errors.Is(err, job.ErrQueueFull) {
			WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.Id, "reindex queue is full, retry later")
			return
		}
		h.logger.Error("could not enqueue reindex", "traceId", traceId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.Id, "could not queue reindex")
		return
	}

	writeJsonResponse(w, http.StatusAccepted, adapter.ToReindexResponse(newJob))
}

// JobStatus godoc
// @Summary      Get reindex job status
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /jobs/{id} [get]
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "job id is required")
		return
	}

	found, ok := h.jobs.Get(r.Context(), id)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, id, "job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(found))
}

// Health godoc
// @Summary      Service health
// @Description  Pings the vector store and reports the indexed chunk count.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJsonResponse(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded"})
		return
	}
	count, err := h.store.Count(r.Context())
	if err != nil {
		writeJsonResponse(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded"})
		return
	}
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok", ChunkCount: count})
}
