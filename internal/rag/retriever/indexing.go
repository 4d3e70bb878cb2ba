package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/voicedesk/orchestrator/internal/adapter/utils"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/metrics"
)

// IndexDocument runs chunk → embed → insert for one document and swaps it
// in as the active generation. The previous generation stays live until
// the new one is committed, so a crash mid-index never leaves the document
// unindexed.
func (s *service) IndexDocument(ctx context.Context, doc kbmodel.Document) (int, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_indexing", time.Since(start)) }()

	if err := s.store.UpsertDocument(ctx, doc); err != nil {
		return 0, err
	}

	texts := s.splitter.Split(doc.Content)
	if len(texts) == 0 {
		log.Warn("document has no indexable content")
		return 0, nil
	}

	version, err := s.store.NextVersion(ctx, doc.Id)
	if err != nil {
		return 0, err
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}

	chunks := make([]kbmodel.Chunk, 0, len(texts))
	for i, text := range texts {
		if vectors[i] == nil {
			return 0, fmt.Errorf("chunk %d of document %s: %w", i, doc.Id, kbmodel.ErrEmptyInput)
		}
		chunks = append(chunks, kbmodel.Chunk{
			Id:         utils.GetNewUUID(),
			DocumentId: doc.Id,
			ChunkIndex: i,
			Version:    version,
			Content:    text,
			Embedding:  vectors[i],
			Metadata:   doc.Metadata,
		})
	}

	if err := s.store.InsertBatch(ctx, chunks); err != nil {
		return 0, err
	}
	if err := s.store.ActivateVersion(ctx, doc.Id, version); err != nil {
		return 0, err
	}

	// stale generations are invisible after the swap; pruning is cleanup
	if err := s.store.PruneVersionsBelow(ctx, doc.Id, version); err != nil {
		log.Warn("pruning old chunk versions failed", "error", err)
	}

	log.Debug("document indexed", "chunks", len(chunks), "version", version)
	return len(chunks), nil
}

// ReindexDocument is IndexDocument under the versioned swap: the old chunk
// set is replaced atomically by activating the new version.
func (s *service) ReindexDocument(ctx context.Context, doc kbmodel.Document) (int, error) {
	return s.IndexDocument(ctx, doc)
}

func (s *service) DeleteDocument(ctx context.Context, documentId string) (int64, error) {
	return s.store.DeleteByDocument(ctx, documentId)
}
