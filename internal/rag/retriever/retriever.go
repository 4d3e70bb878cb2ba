package retriever

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/metrics"
	"github.com/voicedesk/orchestrator/internal/rag/chunker"
	"github.com/voicedesk/orchestrator/internal/rag/embedding"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// ErrRestrictedQuery marks a query that touched a restricted term without
// elevated access.
var ErrRestrictedQuery = errors.New("query touches a restricted topic")

// Service is the retrieval orchestrator: it owns the chunk→embed→store
// path at index time and the embed→search→assemble path at query time.
// Callers never see the store or the embedder directly.
type Service interface {
	Query(ctx context.Context, question string, filter kbmodel.SearchFilter) (kbmodel.QueryResponse, error)
	// QueryWithVector skips the embedding step for callers that already
	// hold the query vector (the conversational path embeds once for the
	// answer cache and reuses it here).
	QueryWithVector(ctx context.Context, question string, vector []float32, filter kbmodel.SearchFilter) (kbmodel.QueryResponse, error)
	ValidateQuery(query string, caller kbmodel.AccessLevel) error
	IndexDocument(ctx context.Context, doc kbmodel.Document) (int, error)
	ReindexDocument(ctx context.Context, doc kbmodel.Document) (int, error)
	DeleteDocument(ctx context.Context, documentId string) (int64, error)
}

type service struct {
	store    vectorDB.Store
	embedder embedding.Embedder
	splitter *chunker.Chunker
	logger   *logger_i.Logger
}

func NewService(store vectorDB.Store, embedder embedding.Embedder, splitter *chunker.Chunker) Service {
	return &service{
		store:    store,
		embedder: embedder,
		splitter: splitter,
		logger:   logger_i.NewLogger("retriever"),
	}
}

func (s *service) Query(ctx context.Context, question string, filter kbmodel.SearchFilter) (kbmodel.QueryResponse, error) {
	start := time.Now()
	vector, err := s.embedder.Embed(ctx, question)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return kbmodel.QueryResponse{Question: question}, err
	}
	return s.QueryWithVector(ctx, question, vector, filter)
}

func (s *service) QueryWithVector(ctx context.Context, question string, vector []float32, filter kbmodel.SearchFilter) (kbmodel.QueryResponse, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	resp := kbmodel.QueryResponse{Question: question}

	if strings.TrimSpace(question) == "" {
		return resp, kbmodel.ErrEmptyInput
	}
	switch {
	case filter.Threshold == 0:
		filter.Threshold = config.DefaultMinSimilarity
	case filter.Threshold < 0:
		// negative means the caller wants every match, however weak
		filter.Threshold = 0
	}

	start := time.Now()
	matches, err := s.store.Search(ctx, vector, filter)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return resp, err
	}

	resp.Results = matches
	resp.HasResults = len(matches) > 0
	if resp.HasResults {
		resp.TopScore = matches[0].Similarity
	}
	resp.Context = assembleContext(matches)
	resp.Sources = dedupeSources(matches)

	// analytics only, never fails the caller
	if err := s.store.LogQuery(ctx, kbmodel.QueryLogEntry{
		Query:     question,
		Results:   matches,
		TopScore:  resp.TopScore,
		Timestamp: time.Now(),
	}); err != nil {
		log.Warn("query log write failed", "error", err)
	}

	return resp, nil
}

// ValidateQuery rejects queries containing a restricted-category term
// unless the caller holds confidential access. Matching is literal
// substring matching, not semantic; that is a documented limitation.
func (s *service) ValidateQuery(query string, caller kbmodel.AccessLevel) error {
	if caller == kbmodel.AccessConfidential {
		return nil
	}
	lowered := strings.ToLower(query)
	for _, term := range config.RestrictedTerms {
		if strings.Contains(lowered, term) {
			return ErrRestrictedQuery
		}
	}
	return nil
}
