package retriever_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/chunker"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

func init() { logger_i.Init() }

func newService(t *testing.T, store *MockStore, embedder *MockEmbedder) retriever.Service {
	t.Helper()
	split, err := chunker.New(chunker.Options{MaxSize: 80, Mode: chunker.ModeSentence})
	if err != nil {
		t.Fatalf("chunker: %v", err)
	}
	return retriever.NewService(store, embedder, split)
}

func TestQuery_AssemblesContextAndDedupesSources(t *testing.T) {
	store := &MockStore{
		OnSearch: func(ctx context.Context, vec []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error) {
			return []kbmodel.Match{
				{DocumentId: "d1", ChunkIndex: 0, Content: "open nine to five", Title: "Hours", Source: "handbook", Similarity: 0.92},
				{DocumentId: "d2", ChunkIndex: 1, Content: "call the desk", Title: "Contact", Source: "handbook", Similarity: 0.81},
				{DocumentId: "d1", ChunkIndex: 2, Content: "closed on sundays", Title: "Hours", Source: "handbook", Similarity: 0.77},
			}, nil
		},
	}
	s := newService(t, store, &MockEmbedder{})

	resp, err := s.Query(context.Background(), "when are you open", kbmodel.SearchFilter{TopK: 3})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !resp.HasResults || resp.TopScore != 0.92 {
		t.Errorf("hasResults/topScore wrong: %v %f", resp.HasResults, resp.TopScore)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("sources must dedupe by document id, got %d", len(resp.Sources))
	}
	// first occurrence wins
	if resp.Sources[0].DocumentId != "d1" || resp.Sources[1].DocumentId != "d2" {
		t.Errorf("source order wrong: %+v", resp.Sources)
	}
	for _, want := range []string{"open nine to five", "call the desk", "closed on sundays", "---"} {
		if !strings.Contains(resp.Context, want) {
			t.Errorf("context missing %q:\n%s", want, resp.Context)
		}
	}
	if len(store.Logged) != 1 {
		t.Errorf("expected one query log entry, got %d", len(store.Logged))
	}
}

func TestQuery_ThresholdDefaultAndNoFloor(t *testing.T) {
	var seen []float64
	store := &MockStore{
		OnSearch: func(ctx context.Context, vec []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error) {
			seen = append(seen, filter.Threshold)
			return nil, nil
		},
	}
	s := newService(t, store, &MockEmbedder{})

	if _, err := s.Query(context.Background(), "q", kbmodel.SearchFilter{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Query(context.Background(), "q", kbmodel.SearchFilter{Threshold: -1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Query(context.Background(), "q", kbmodel.SearchFilter{Threshold: 0.8}); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 3 || seen[0] != config.DefaultMinSimilarity || seen[1] != 0 || seen[2] != 0.8 {
		t.Errorf("thresholds reaching the store = %v", seen)
	}
}

func TestQuery_EmptyQuestionFailsFast(t *testing.T) {
	searched := false
	store := &MockStore{
		OnSearch: func(ctx context.Context, vec []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error) {
			searched = true
			return nil, nil
		},
	}
	s := newService(t, store, &MockEmbedder{})

	_, err := s.Query(context.Background(), "", kbmodel.SearchFilter{})
	if !errors.Is(err, kbmodel.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if searched {
		t.Error("store must not be searched when embedding fails")
	}
}

func TestQuery_LogFailureDoesNotFailCaller(t *testing.T) {
	store := &MockStore{
		OnLogQuery: func(ctx context.Context, entry kbmodel.QueryLogEntry) error {
			return errors.New("analytics db down")
		},
	}
	s := newService(t, store, &MockEmbedder{})

	if _, err := s.Query(context.Background(), "anything", kbmodel.SearchFilter{}); err != nil {
		t.Errorf("query log failure must be swallowed, got %v", err)
	}
}

func TestIndexDocument_VersionedSwap(t *testing.T) {
	store := &MockStore{
		OnNextVersion: func(ctx context.Context, documentId string) (int, error) { return 4, nil },
	}
	s := newService(t, store, &MockEmbedder{})

	doc := kbmodel.Document{
		Id:      "doc-1",
		Title:   "Opening hours",
		Content: "We open at nine. We close at five. Weekends we are closed.",
	}

	n, err := s.IndexDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("IndexDocument failed: %v", err)
	}
	if n == 0 {
		t.Fatal("no chunks indexed")
	}

	if len(store.Inserted) != 1 {
		t.Fatalf("expected one insert batch, got %d", len(store.Inserted))
	}
	for i, ch := range store.Inserted[0] {
		if ch.Version != 4 {
			t.Errorf("chunk %d has version %d, want 4", i, ch.Version)
		}
		if ch.ChunkIndex != i {
			t.Errorf("chunk order not preserved: got index %d at position %d", ch.ChunkIndex, i)
		}
	}
	if len(store.Activated) != 1 || store.Activated[0] != 4 {
		t.Errorf("new version was not activated: %v", store.Activated)
	}
	if len(store.Pruned) != 1 || store.Pruned[0] != 4 {
		t.Errorf("old generations were not pruned: %v", store.Pruned)
	}
}

func TestIndexDocument_EmbedFailureLeavesOldVersionActive(t *testing.T) {
	store := &MockStore{}
	embedder := &MockEmbedder{
		OnEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, kbmodel.WrapProvider("openai", errors.New("quota exceeded"))
		},
	}
	s := newService(t, store, embedder)

	_, err := s.IndexDocument(context.Background(), kbmodel.Document{Id: "doc-1", Content: "Some content."})
	var provErr *kbmodel.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if len(store.Activated) != 0 {
		t.Error("a failed index run must not activate a new version")
	}
}

func TestReindex_SameContentYieldsSameChunkSet(t *testing.T) {
	version := 0
	store := &MockStore{
		OnNextVersion: func(ctx context.Context, documentId string) (int, error) {
			version++
			return version, nil
		},
	}
	s := newService(t, store, &MockEmbedder{})

	doc := kbmodel.Document{Id: "doc-1", Content: "First sentence here. Second sentence follows. Third closes it."}

	if _, err := s.IndexDocument(context.Background(), doc); err != nil {
		t.Fatalf("first index failed: %v", err)
	}
	if _, err := s.ReindexDocument(context.Background(), doc); err != nil {
		t.Fatalf("reindex failed: %v", err)
	}

	first, second := store.Inserted[0], store.Inserted[1]
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content {
			t.Errorf("chunk %d content differs between runs", i)
		}
		if first[i].Id == second[i].Id {
			t.Errorf("chunk %d reused an identifier across generations", i)
		}
	}
}

func TestValidateQuery_RestrictedTerms(t *testing.T) {
	s := newService(t, &MockStore{}, &MockEmbedder{})

	tests := []struct {
		name    string
		query   string
		caller  kbmodel.AccessLevel
		wantErr bool
	}{
		{"Restricted_For_Public", "what is the payroll schedule", kbmodel.AccessPublic, true},
		{"Restricted_For_Internal", "explain the termination process", kbmodel.AccessInternal, true},
		{"Allowed_For_Confidential", "what is the payroll schedule", kbmodel.AccessConfidential, false},
		{"Clean_Query", "what are your opening hours", kbmodel.AccessPublic, false},
		{"Case_Insensitive", "PAYROLL details please", kbmodel.AccessPublic, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateQuery(tt.query, tt.caller)
			if tt.wantErr && !errors.Is(err, retriever.ErrRestrictedQuery) {
				t.Errorf("expected ErrRestrictedQuery, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
