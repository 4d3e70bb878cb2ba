package worker

import (
	"context"
	"net/http"

	"github.com/voicedesk/orchestrator/internal/domain/jobModel"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/pipeline"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// ReindexExecutor runs reindex jobs against the document folder. Each job
// walks the source and feeds every document through the indexing path;
// the versioned swap inside the indexer keeps search serving the old
// generation until each document's new one is complete.
type ReindexExecutor struct {
	defaultRoot string
	indexer     retriever.Service
	logger      *logger_i.Logger
}

func NewReindexExecutor(defaultRoot string, indexer retriever.Service) *ReindexExecutor {
	return &ReindexExecutor{
		defaultRoot: defaultRoot,
		indexer:     indexer,
		logger:      logger_i.NewLogger("reindexExecutor"),
	}
}

func (e *ReindexExecutor) Execute(ctx context.Context, j jobModel.Job) jobModel.Job {
	root := j.Source
	if root == "" {
		root = e.defaultRoot
	}

	source, err := pipeline.NewFolderSource(root, kbmodel.AccessInternal)
	if err != nil {
		e.logger.Error("cannot open document source", "root", root, "error", err)
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: http.StatusBadRequest, Message: err.Error()}
		return j
	}

	report, err := pipeline.New(source, e.indexer).IndexAll(ctx)
	j.Report = report
	if err != nil {
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: http.StatusInternalServerError, Message: err.Error(), Retry: true}
	}
	return j
}
