package pipeline

import (
	"context"
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/metrics"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

var logger = logger_i.NewLogger("pipeline")

// Pipeline walks a DocumentSource and indexes every document it yields.
type Pipeline struct {
	source  DocumentSource
	indexer retriever.Service
}

func New(source DocumentSource, indexer retriever.Service) *Pipeline {
	return &Pipeline{source: source, indexer: indexer}
}

// IndexAll indexes the whole source. One document failing — at listing
// page granularity, extraction or indexing — is recorded and the batch
// moves on; the report carries the per-item outcomes. The returned error
// is reserved for a listing failure that stops the walk itself.
func (p *Pipeline) IndexAll(ctx context.Context) (kbmodel.BatchReport, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "source", p.source.Name())
	report := kbmodel.BatchReport{}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_all", time.Since(start)) }()

	pageToken := ""
	for {
		refs, next, err := p.source.List(ctx, pageToken)
		if err != nil {
			log.Error("source listing failed", "pageToken", pageToken, "error", err)
			return report, err
		}

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Total++
			if err := p.indexOne(ctx, ref); err != nil {
				log.Warn("document failed, continuing", "ref", ref, "error", err)
				report.Errors = append(report.Errors, kbmodel.ItemError{Id: ref, Reason: err.Error()})
				continue
			}
			report.Indexed++
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	log.Info("source indexed", "total", report.Total, "indexed", report.Indexed, "failed", len(report.Errors))
	return report, nil
}

func (p *Pipeline) indexOne(ctx context.Context, ref string) error {
	doc, err := p.source.Fetch(ctx, ref)
	if err != nil {
		return err
	}
	_, err = p.indexer.IndexDocument(ctx, doc)
	return err
}
