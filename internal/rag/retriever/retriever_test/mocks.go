package retriever_test

import (
	"context"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// MockStore implements vectorDB.Store
type MockStore struct {
	OnUpsertDocument  func(ctx context.Context, doc kbmodel.Document) error
	OnNextVersion     func(ctx context.Context, documentId string) (int, error)
	OnInsertBatch     func(ctx context.Context, chunks []kbmodel.Chunk) error
	OnActivateVersion func(ctx context.Context, documentId string, version int) error
	OnSearch          func(ctx context.Context, vec []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error)
	OnDeleteByDoc     func(ctx context.Context, documentId string) (int64, error)
	OnLogQuery        func(ctx context.Context, entry kbmodel.QueryLogEntry) error

	Inserted  [][]kbmodel.Chunk
	Activated []int
	Pruned    []int
	Logged    []kbmodel.QueryLogEntry
}

func (m *MockStore) UpsertDocument(ctx context.Context, doc kbmodel.Document) error {
	if m.OnUpsertDocument != nil {
		return m.OnUpsertDocument(ctx, doc)
	}
	return nil
}

func (m *MockStore) GetDocument(ctx context.Context, id string) (kbmodel.Document, bool, error) {
	return kbmodel.Document{}, false, nil
}

func (m *MockStore) NextVersion(ctx context.Context, documentId string) (int, error) {
	if m.OnNextVersion != nil {
		return m.OnNextVersion(ctx, documentId)
	}
	return 1, nil
}

func (m *MockStore) InsertBatch(ctx context.Context, chunks []kbmodel.Chunk) error {
	if m.OnInsertBatch != nil {
		return m.OnInsertBatch(ctx, chunks)
	}
	m.Inserted = append(m.Inserted, chunks)
	return nil
}

func (m *MockStore) ActivateVersion(ctx context.Context, documentId string, version int) error {
	if m.OnActivateVersion != nil {
		return m.OnActivateVersion(ctx, documentId, version)
	}
	m.Activated = append(m.Activated, version)
	return nil
}

func (m *MockStore) PruneVersionsBelow(ctx context.Context, documentId string, version int) error {
	m.Pruned = append(m.Pruned, version)
	return nil
}

func (m *MockStore) Search(ctx context.Context, vec []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vec, filter)
	}
	return nil, nil
}

func (m *MockStore) DeleteByDocument(ctx context.Context, documentId string) (int64, error) {
	if m.OnDeleteByDoc != nil {
		return m.OnDeleteByDoc(ctx, documentId)
	}
	return 0, nil
}

func (m *MockStore) LogQuery(ctx context.Context, entry kbmodel.QueryLogEntry) error {
	if m.OnLogQuery != nil {
		return m.OnLogQuery(ctx, entry)
	}
	m.Logged = append(m.Logged, entry)
	return nil
}

func (m *MockStore) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *MockStore) HealthCheck(ctx context.Context) error { return nil }

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func dummyVector() []float32 {
	return make([]float32, config.EmbeddingDimension)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	if text == "" {
		return nil, kbmodel.ErrEmptyInput
	}
	return dummyVector(), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if t != "" {
			out[i] = dummyVector()
		}
	}
	return out, nil
}
