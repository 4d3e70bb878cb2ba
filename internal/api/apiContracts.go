package api

import (
	"time"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// requests ---------------------

type IngestDocumentRequest struct {
	Source      string            `json:"source" validate:"required" example:"crm"`
	SourceId    string            `json:"source_id,omitempty"`
	Title       string            `json:"title" validate:"required" example:"Opening hours"`
	Content     string            `json:"content" validate:"required"`
	Category    string            `json:"category" example:"faq"`
	Department  string            `json:"department,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	AccessLevel string            `json:"access_level" example:"internal"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type QueryRequest struct {
	Question    string  `json:"question" validate:"required" example:"when are you open"`
	TopK        int     `json:"top_k,omitempty" example:"5"`
	Threshold   float64 `json:"threshold,omitempty" example:"0.5"`
	AccessLevel string  `json:"access_level,omitempty" example:"public"`
	Category    string  `json:"category,omitempty"`
	Department  string  `json:"department,omitempty"`
}

type TurnRequest struct {
	Utterance string `json:"utterance" validate:"required" example:"I want to book an appointment"`
}

type ReindexRequest struct {
	Source      string `json:"source,omitempty" example:"/srv/knowledge"`
	FullReindex bool   `json:"full_reindex" example:"true"`
}

// responses ---------------------

type IngestDocumentResponse struct {
	DocumentId string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

type DeleteDocumentResponse struct {
	DocumentId    string `json:"document_id"`
	ChunksRemoved int64  `json:"chunks_removed"`
}

type ReindexResponse struct {
	Status        string `json:"status" example:"started"`
	JobId         string `json:"job_id"`
	EstimatedTime string `json:"estimated_time" example:"2m0s"`
	StatusURL     string `json:"status_url"`
}

type JobResponse struct {
	Id        string               `json:"id" example:"job_cz109"`
	Status    string               `json:"status" example:"RUNNING"`
	Source    string               `json:"source,omitempty"`
	Report    *kbmodel.BatchReport `json:"report,omitempty"`
	Error     *JobOutgoingError    `json:"error,omitempty"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type HealthResponse struct {
	Status     string `json:"status" example:"ok"`
	ChunkCount int64  `json:"chunk_count"`
}

type ErrorResponse struct {
	Id      string `json:"id,omitempty"`
	Code    int    `json:"code" example:"400"`
	Message string `json:"message"`
}
