package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/voicedesk/orchestrator/internal/adapter/utils"
	"github.com/voicedesk/orchestrator/internal/api"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
)

// IngestDocument godoc
// @Summary      Ingest a knowledge-base document
// @Description  Chunks, embeds and stores one document synchronously; returns its id and chunk count.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestDocumentRequest  true  "Document to index"
// @Success      201      {object}  api.IngestDocumentResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse "Embedding or storage provider failed"
// @Router       /documents [post]
func (h *Handler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	defer closeBody(r.Body)

	var req api.IngestDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Source == "" || req.Title == "" || req.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "source, title and content are required")
		return
	}

	access := kbmodel.AccessLevel(req.AccessLevel)
	if req.AccessLevel != "" && !access.Valid() {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown access_level "+req.AccessLevel)
		return
	}
	if req.AccessLevel == "" {
		access = kbmodel.AccessInternal
	}

	now := time.Now()
	doc := kbmodel.Document{
		Id:          utils.GetNewUUID(),
		Source:      req.Source,
		SourceId:    req.SourceId,
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Department:  req.Department,
		Tags:        req.Tags,
		AccessLevel: access,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	chunks, err := h.retriever.IndexDocument(r.Context(), doc)
	if err != nil {
		h.logger.Error("document ingestion failed", "traceId", r.Context().Value(config.TRACE_ID_KEY), "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, doc.Id, "indexing failed")
		return
	}

	writeJsonResponse(w, http.StatusCreated, api.IngestDocumentResponse{DocumentId: doc.Id, Chunks: chunks})
}

// DeleteDocument godoc
// @Summary      Delete a document and its chunks
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DeleteDocumentResponse
// @Failure      502  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document id is required")
		return
	}

	removed, err := h.retriever.DeleteDocument(r.Context(), id)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadGateway, id, "delete failed")
		return
	}
	// removed == 0 means the id was unknown; deletion is idempotent
	writeJsonResponse(w, http.StatusOK, api.DeleteDocumentResponse{DocumentId: id, ChunksRemoved: removed})
}

// Query godoc
// @Summary      Search the knowledge base
// @Description  Embeds the question, runs filtered similarity search and returns ranked passages with an assembled context blob.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Question and optional filters"
// @Success      200      {object}  kbmodel.QueryResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse "Restricted topic for this access level"
// @Router       /query [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	defer closeBody(r.Body)

	var req api.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}

	access := kbmodel.AccessLevel(req.AccessLevel)
	if req.AccessLevel == "" {
		access = kbmodel.AccessPublic
	} else if !access.Valid() {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown access_level "+req.AccessLevel)
		return
	}

	if err := h.retriever.ValidateQuery(req.Question, access); err != nil {
		if errors.Is(err, retriever.ErrRestrictedQuery) {
			WriteErrorResponse(w, http.StatusForbidden, "", "query touches a restricted topic")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "", err.Error())
		return
	}

	resp, err := h.retriever.Query(r.Context(), req.Question, kbmodel.SearchFilter{
		TopK:        req.TopK,
		Threshold:   req.Threshold,
		AccessLevel: access,
		Category:    req.Category,
		Department:  req.Department,
	})
	if err != nil {
		if errors.Is(err, kbmodel.ErrEmptyInput) {
			WriteErrorResponse(w, http.StatusBadRequest, "", "question is empty")
			return
		}
		h.logger.Error("query failed", "traceId", r.Context().Value(config.TRACE_ID_KEY), "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "", "search failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, resp)
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logH.Error("couldn't close request body", "error", err)
	}
}
