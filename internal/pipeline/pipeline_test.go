package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

func init() { logger_i.Init() }

type mockSource struct {
	pages   map[string][]string
	next    map[string]string
	OnFetch func(ref string) (kbmodel.Document, error)
	OnList  func(pageToken string) ([]string, string, error)
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) List(_ context.Context, pageToken string) ([]string, string, error) {
	if m.OnList != nil {
		return m.OnList(pageToken)
	}
	return m.pages[pageToken], m.next[pageToken], nil
}

func (m *mockSource) Fetch(_ context.Context, ref string) (kbmodel.Document, error) {
	if m.OnFetch != nil {
		return m.OnFetch(ref)
	}
	return kbmodel.Document{Id: ref, Content: "content of " + ref}, nil
}

type mockIndexer struct {
	OnIndex func(doc kbmodel.Document) (int, error)
	Indexed []string
}

func (m *mockIndexer) IndexDocument(_ context.Context, doc kbmodel.Document) (int, error) {
	if m.OnIndex != nil {
		return m.OnIndex(doc)
	}
	m.Indexed = append(m.Indexed, doc.Id)
	return 3, nil
}

func (m *mockIndexer) ReindexDocument(ctx context.Context, doc kbmodel.Document) (int, error) {
	return m.IndexDocument(ctx, doc)
}

func (m *mockIndexer) Query(context.Context, string, kbmodel.SearchFilter) (kbmodel.QueryResponse, error) {
	return kbmodel.QueryResponse{}, nil
}

func (m *mockIndexer) QueryWithVector(context.Context, string, []float32, kbmodel.SearchFilter) (kbmodel.QueryResponse, error) {
	return kbmodel.QueryResponse{}, nil
}

func (m *mockIndexer) ValidateQuery(string, kbmodel.AccessLevel) error { return nil }

func (m *mockIndexer) DeleteDocument(context.Context, string) (int64, error) { return 0, nil }

func refsNumbered(n int) []string {
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("doc-%02d.txt", i)
	}
	return refs
}

func TestIndexAll_FaultIsolation(t *testing.T) {
	source := &mockSource{
		pages: map[string][]string{"": refsNumbered(10)},
		next:  map[string]string{},
	}
	// two of the ten fail: one at extraction, one at indexing
	source.OnFetch = func(ref string) (kbmodel.Document, error) {
		if ref == "doc-03.txt" {
			return kbmodel.Document{}, errors.New("corrupt file")
		}
		return kbmodel.Document{Id: ref, Content: "content"}, nil
	}
	indexer := &mockIndexer{}
	indexer.OnIndex = func(doc kbmodel.Document) (int, error) {
		if doc.Id == "doc-07.txt" {
			return 0, kbmodel.WrapProvider("openai", errors.New("rate limited"))
		}
		indexer.Indexed = append(indexer.Indexed, doc.Id)
		return 3, nil
	}

	report, err := New(source, indexer).IndexAll(context.Background())
	if err != nil {
		t.Fatalf("IndexAll: %v", err)
	}
	if report.Total != 10 || report.Indexed != 8 || len(report.Errors) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.Errors[0].Id != "doc-03.txt" || report.Errors[1].Id != "doc-07.txt" {
		t.Errorf("errors = %+v", report.Errors)
	}
	if len(indexer.Indexed) != 8 {
		t.Errorf("indexed %d documents", len(indexer.Indexed))
	}
}

func TestIndexAll_FollowsPageTokens(t *testing.T) {
	source := &mockSource{
		pages: map[string][]string{
			"":   {"a.txt", "b.txt"},
			"p2": {"c.txt"},
		},
		next: map[string]string{"": "p2"},
	}
	indexer := &mockIndexer{}

	report, err := New(source, indexer).IndexAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 3 || report.Indexed != 3 {
		t.Fatalf("report = %+v", report)
	}
	if len(indexer.Indexed) != 3 || indexer.Indexed[2] != "c.txt" {
		t.Errorf("indexed = %v", indexer.Indexed)
	}
}

func TestIndexAll_ListingFailureAborts(t *testing.T) {
	calls := 0
	source := &mockSource{
		OnList: func(pageToken string) ([]string, string, error) {
			calls++
			if pageToken == "" {
				return []string{"a.txt"}, "p2", nil
			}
			return nil, "", errors.New("source gone")
		},
	}
	indexer := &mockIndexer{}

	report, err := New(source, indexer).IndexAll(context.Background())
	if err == nil {
		t.Fatal("listing failure must surface")
	}
	// the first page's work is still reported
	if report.Total != 1 || report.Indexed != 1 {
		t.Errorf("report = %+v", report)
	}
	if calls != 2 {
		t.Errorf("List called %d times", calls)
	}
}

func TestIndexAll_CancelledContext(t *testing.T) {
	source := &mockSource{pages: map[string][]string{"": refsNumbered(5)}, next: map[string]string{}}
	indexer := &mockIndexer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(source, indexer).IndexAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(indexer.Indexed) != 0 {
		t.Error("no indexing after cancellation")
	}
}

func TestFolderSource_WalkAndFetch(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("faq/hours.txt", "We are open nine to five.")
	write("handbook.md", "Employee handbook.")
	write("ignore.png", "binary")

	source, err := NewFolderSource(root, kbmodel.AccessInternal)
	if err != nil {
		t.Fatalf("NewFolderSource: %v", err)
	}

	refs, next, err := source.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if next != "" {
		t.Errorf("unexpected next token %q", next)
	}
	if len(refs) != 2 {
		t.Fatalf("refs = %v", refs)
	}

	doc, err := source.Fetch(context.Background(), "faq/hours.txt")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "We are open nine to five." {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.Category != "faq" || doc.Title != "hours" || doc.AccessLevel != kbmodel.AccessInternal {
		t.Errorf("doc = %+v", doc)
	}
	// ids must round-trip through the store's uuid columns
	if _, err := uuid.Parse(doc.Id); err != nil {
		t.Errorf("id %q is not a uuid: %v", doc.Id, err)
	}

	// identity is stable so a re-run updates in place
	again, err := source.Fetch(context.Background(), "faq/hours.txt")
	if err != nil {
		t.Fatal(err)
	}
	if again.Id != doc.Id {
		t.Errorf("id changed between fetches: %q vs %q", doc.Id, again.Id)
	}

	top, err := source.Fetch(context.Background(), "handbook.md")
	if err != nil {
		t.Fatal(err)
	}
	if top.Category != "general" {
		t.Errorf("top-level category = %q", top.Category)
	}
}

func TestFolderSource_MissingRoot(t *testing.T) {
	if _, err := NewFolderSource(filepath.Join(t.TempDir(), "nope"), kbmodel.AccessPublic); err == nil {
		t.Fatal("missing root must fail construction")
	}
}

func TestDocumentId_ValidStableUUID(t *testing.T) {
	id := documentId("faq/opening hours.txt")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("id %q is not a uuid: %v", id, err)
	}
	if id != documentId("faq/opening hours.txt") {
		t.Error("id not stable across calls")
	}
	if id == documentId("faq/closing hours.txt") {
		t.Error("distinct paths share one id")
	}
}

func TestDetectDocType(t *testing.T) {
	cases := map[string]docType{
		"a.pdf":    typePDF,
		"B.DOCX":   typeDoc,
		"notes.md": typeText,
		"x.txt":    typeText,
		"img.png":  typeUnknown,
	}
	for path, want := range cases {
		if got := detectDocType(path); got != want {
			t.Errorf("detectDocType(%s) = %v, want %v", path, got, want)
		}
	}
}
