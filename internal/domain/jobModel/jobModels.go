package jobModel

import (
	"context"
	"time"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

type JobStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"

	JobTypeReindex JobType = "Reindex"
)

// Job is one asynchronous reindex run. The Report is filled in by the
// worker when the run finishes; until then it is zero.
type Job struct {
	Id          string              `json:"id"`
	TraceId     string              `json:"trace_id"`
	JobType     JobType             `json:"job_type"`
	Source      string              `json:"source,omitempty"`
	FullReindex bool                `json:"full_reindex"`
	Report      kbmodel.BatchReport `json:"report"`
	Error       JobError            `json:"error,omitempty"`
	CreatedTime time.Time           `json:"created_time"`
	EndTime     time.Time           `json:"end_time,omitempty"`
	Status      JobStatus           `json:"status"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
