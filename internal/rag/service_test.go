package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/extract"
	"github.com/fyrsmithlabs/ragd/internal/tenant"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

// fakeStore records calls and serves canned query results per collection.
type fakeStore struct {
	added      map[string][]vectorstore.Document
	queryHits  map[string][]vectorstore.SearchResult
	purged     []string
	deleted    []string
	failAdd    error
	failQuery  error
	failPurge  error
	failDelete error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		added:     map[string][]vectorstore.Document{},
		queryHits: map[string][]vectorstore.SearchResult{},
	}
}

func (f *fakeStore) Add(_ context.Context, collection string, docs []vectorstore.Document) error {
	if f.failAdd != nil {
		return f.failAdd
	}
	f.added[collection] = append(f.added[collection], docs...)
	return nil
}

func (f *fakeStore) Query(_ context.Context, collection, _ string, k int) ([]vectorstore.SearchResult, error) {
	if f.failQuery != nil {
		return nil, f.failQuery
	}
	hits := f.queryHits[collection]
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeStore) DeleteBySource(_ context.Context, collection, source string) error {
	if f.failPurge != nil {
		return f.failPurge
	}
	f.purged = append(f.purged, collection+"/"+source)
	return nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, collection string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, collection)
	return nil
}

func (f *fakeStore) Close() error { return nil }

// fakeGenerator records the last prompt and returns a canned answer.
type fakeGenerator struct {
	lastPrompt string
	answer     string
	fail       error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.lastPrompt = prompt
	return f.answer, nil
}

func (f *fakeGenerator) Close() error { return nil }

func newTestService(t *testing.T, store vectorstore.Store, gen *fakeGenerator) (*Service, *tenant.Manager) {
	t.Helper()
	workspaces, err := tenant.NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	svc, err := NewService(workspaces, extract.New(), store, gen, Config{}, zap.NewNop())
	require.NoError(t, err)
	return svc, workspaces
}

func TestIngest_ChunksAndStores(t *testing.T) {
	store := newFakeStore()
	svc, workspaces := newTestService(t, store, &fakeGenerator{answer: "ok"})
	ctx := context.Background()

	content := strings.Repeat("x", 2500)
	result, err := svc.Ingest(ctx, "alice", "doc.txt", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "doc.txt", result.Filename)
	assert.Equal(t, 3, result.Chunks)

	// Prior chunks are purged before the batch write.
	assert.Equal(t, []string{"user_alice/doc.txt"}, store.purged)

	docs := store.added["user_alice"]
	require.Len(t, docs, 3)
	for i, want := range []int{1000, 1000, 500} {
		assert.Equal(t, fmt.Sprintf("doc.txt_%d", i), docs[i].ID)
		assert.Len(t, docs[i].Content, want)
		assert.Equal(t, "doc.txt", docs[i].Metadata["source"])
	}

	// The raw document lands in the workspace.
	path, err := workspaces.DocumentPath("alice", "doc.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestIngest_OverwritesPriorDocument(t *testing.T) {
	store := newFakeStore()
	svc, workspaces := newTestService(t, store, &fakeGenerator{answer: "ok"})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "alice", "doc.txt", strings.NewReader(strings.Repeat("a", 1500)))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "alice", "doc.txt", strings.NewReader("short"))
	require.NoError(t, err)

	// Each ingest purges the filename before writing its chunks.
	assert.Equal(t, []string{"user_alice/doc.txt", "user_alice/doc.txt"}, store.purged)

	path, err := workspaces.DocumentPath("alice", "doc.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestIngest_ExtractionFailure(t *testing.T) {
	store := newFakeStore()
	svc, workspaces := newTestService(t, store, &fakeGenerator{answer: "ok"})

	_, err := svc.Ingest(context.Background(), "alice", "broken.pdf", strings.NewReader("not a pdf"))
	require.ErrorIs(t, err, ErrExtraction)

	// The raw file write is not rolled back.
	path, perr := workspaces.DocumentPath("alice", "broken.pdf")
	require.NoError(t, perr)
	_, serr := os.Stat(path)
	assert.NoError(t, serr)

	// Nothing reached the index.
	assert.Empty(t, store.added)
}

func TestIngest_StorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failAdd = errors.New("index down")
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})

	_, err := svc.Ingest(context.Background(), "alice", "doc.txt", strings.NewReader("content"))
	require.ErrorIs(t, err, ErrStorage)
}

func TestIngest_RejectsBadNames(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "alice", "../escape.txt", strings.NewReader("x"))
	assert.Error(t, err)
	_, err = svc.Ingest(ctx, "../evil", "doc.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestAnswer_BuildsGroundingPrompt(t *testing.T) {
	store := newFakeStore()
	store.queryHits["user_alice"] = []vectorstore.SearchResult{
		{ID: "doc.pdf_0", Content: "first chunk", Metadata: map[string]string{"source": "doc.pdf"}},
		{ID: "doc.pdf_1", Content: "second chunk", Metadata: map[string]string{"source": "doc.pdf"}},
	}
	gen := &fakeGenerator{answer: "  the answer  \n"}
	svc, _ := newTestService(t, store, gen)

	answer, err := svc.Answer(context.Background(), "alice", "What is this about?")
	require.NoError(t, err)

	// Response is returned trimmed, otherwise verbatim.
	assert.Equal(t, "the answer", answer)

	// Prompt carries the preamble, the chunks separated by a blank line,
	// and the literal question.
	assert.Contains(t, gen.lastPrompt, answerPreamble)
	assert.Contains(t, gen.lastPrompt, "first chunk\n\nsecond chunk")
	assert.Contains(t, gen.lastPrompt, "Question: What is this about?")
}

func TestAnswer_EmptyCollection(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{answer: "no context answer"}
	svc, _ := newTestService(t, store, gen)

	answer, err := svc.Answer(context.Background(), "alice", "anything?")
	require.NoError(t, err)
	assert.Equal(t, "no context answer", answer)
	assert.Contains(t, gen.lastPrompt, "Context:\n\n")
}

func TestAnswer_RetrievalFailure(t *testing.T) {
	store := newFakeStore()
	store.failQuery = errors.New("index down")
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "x"})

	_, err := svc.Answer(context.Background(), "alice", "q")
	require.ErrorIs(t, err, ErrRetrieval)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store, &fakeGenerator{fail: errors.New("llm down")})

	_, err := svc.Answer(context.Background(), "alice", "q")
	require.ErrorIs(t, err, ErrGeneration)
}

func TestDeleteDocument(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "alice", "doc.txt", strings.NewReader("content"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(ctx, "alice", "doc.txt"))
	assert.Contains(t, store.purged, "user_alice/doc.txt")

	docs, err := svc.ListDocuments(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = svc.DeleteDocument(ctx, "alice", "doc.txt")
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDestroyTenant(t *testing.T) {
	store := newFakeStore()
	svc, workspaces := newTestService(t, store, &fakeGenerator{answer: "ok"})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "alice", "doc.txt", strings.NewReader("content"))
	require.NoError(t, err)

	require.NoError(t, svc.DestroyTenant(ctx, "alice"))
	assert.Equal(t, []string{"user_alice"}, store.deleted)

	ws, err := workspaces.Workspace("alice")
	require.NoError(t, err)
	entries, err := os.ReadDir(ws.DocumentsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDestroyTenant_BestEffort(t *testing.T) {
	store := newFakeStore()
	store.failDelete = errors.New("index down")
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})

	// Workspace removal still happens; the collection failure is reported.
	err := svc.DestroyTenant(context.Background(), "alice")
	require.Error(t, err)
}

func TestListDocuments(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})
	ctx := context.Background()

	for _, name := range []string{"b.txt", "a.txt"} {
		_, err := svc.Ingest(ctx, "alice", name, strings.NewReader("content"))
		require.NoError(t, err)
	}

	docs, err := svc.ListDocuments(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, docs)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]string{"c1", "c2", "c3"}, "why?")
	want := answerPreamble + "\n\nContext:\nc1\n\nc2\n\nc3\n\nQuestion: why?"
	assert.Equal(t, want, prompt)
}

func TestDestroyTenant_AbsentCollection(t *testing.T) {
	store := newFakeStore()
	store.failDelete = vectorstore.ErrCollectionNotFound
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})

	// A tenant that never ingested has no collection; that is not a failure.
	require.NoError(t, svc.DestroyTenant(context.Background(), "alice"))
}

func TestIngest_EmptyDocument(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store, &fakeGenerator{answer: "ok"})

	result, err := svc.Ingest(context.Background(), "alice", "empty.txt", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Chunks)
	assert.Empty(t, store.added)
}
