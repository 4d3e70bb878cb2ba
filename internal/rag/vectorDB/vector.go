package vectorDB

import (
	"context"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// Store is the persistence contract for documents, chunks and their
// embeddings.
//
// InsertBatch is one transaction: any bad row rolls back the whole batch.
// DeleteByDocument is idempotent and cascades to chunks. Search applies the
// similarity threshold and the optional equality filters before capping at
// TopK, ordered by similarity descending.
type Store interface {
	UpsertDocument(ctx context.Context, doc kbmodel.Document) error
	GetDocument(ctx context.Context, id string) (kbmodel.Document, bool, error)
	NextVersion(ctx context.Context, documentId string) (int, error)
	InsertBatch(ctx context.Context, chunks []kbmodel.Chunk) error
	ActivateVersion(ctx context.Context, documentId string, version int) error
	PruneVersionsBelow(ctx context.Context, documentId string, version int) error
	Search(ctx context.Context, queryVector []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error)
	DeleteByDocument(ctx context.Context, documentId string) (int64, error)
	LogQuery(ctx context.Context, entry kbmodel.QueryLogEntry) error
	Count(ctx context.Context) (int64, error)
	HealthCheck(ctx context.Context) error
}

// AnswerCache is the semantic cache over full answers, keyed by query
// embedding. Lookups and saves are best-effort.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, queryVector []float32, answer string) error
}
