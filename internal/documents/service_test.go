package documents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	docs map[uuid.UUID]*types.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[uuid.UUID]*types.Document)}
}

func (f *fakeStore) CreateDocument(_ context.Context, doc *types.Document) (uuid.UUID, error) {
	id := uuid.New()
	stored := *doc
	stored.ID = id
	f.docs[id] = &stored
	return id, nil
}

func (f *fakeStore) GetDocument(_ context.Context, docID uuid.UUID) (*types.Document, error) {
	return f.docs[docID], nil
}

func (f *fakeStore) ListDocuments(_ context.Context, subject string) ([]types.DocumentSummary, error) {
	var out []types.DocumentSummary
	for _, doc := range f.docs {
		if subject != "" && doc.Subject != subject {
			continue
		}
		out = append(out, types.DocumentSummary{
			ID:        doc.ID,
			Subject:   doc.Subject,
			Name:      doc.Name,
			SizeChars: len(doc.Content),
		})
	}
	return out, nil
}

func (f *fakeStore) ListDocumentContents(_ context.Context, subject string) ([]types.Document, error) {
	var out []types.Document
	for _, doc := range f.docs {
		if doc.Subject == subject {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, docID uuid.UUID) error {
	delete(f.docs, docID)
	return nil
}

func TestCreate_DirectContent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, false, false)

	id, err := svc.Create(context.Background(), &types.CreateDocumentRequest{
		Subject: "python",
		Name:    "Generators guide",
		Content: "# Generators\r\n\r\n\r\nLazy   iteration in Python.",
	})
	require.NoError(t, err)

	doc := store.docs[id]
	require.NotNil(t, doc)
	assert.Equal(t, "python", doc.Subject)
	assert.Equal(t, "# Generators\n\nLazy iteration in Python.", doc.Content)
}

func TestCreate_FromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<nav>Site nav</nav>
			<main><h1>Closures</h1><p>Functions capturing their environment.</p></main>
		</body></html>`))
	}))
	defer server.Close()

	store := newFakeStore()
	svc := NewService(store, false, false)

	id, err := svc.Create(context.Background(), &types.CreateDocumentRequest{
		Subject:   "javascript",
		Name:      "Closures",
		SourceURL: server.URL,
	})
	require.NoError(t, err)

	doc := store.docs[id]
	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, "Closures")
	assert.Contains(t, doc.Content, "capturing their environment")
	assert.NotContains(t, doc.Content, "Site nav")
	assert.Equal(t, server.URL, doc.SourceURL)
}

func TestCreate_MissingContentAndURL(t *testing.T) {
	svc := NewService(newFakeStore(), false, false)

	_, err := svc.Create(context.Background(), &types.CreateDocumentRequest{
		Subject: "python",
		Name:    "Empty",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content or source_url")
}

func TestCreate_InvalidRequest(t *testing.T) {
	svc := NewService(newFakeStore(), false, false)

	_, err := svc.Create(context.Background(), &types.CreateDocumentRequest{
		Name:    "No subject",
		Content: "text",
	})
	assert.Error(t, err)
}

func TestContextForSubject_ConcatenatesWithHeaders(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, false, false)

	ctx := context.Background()
	_, err := svc.Create(ctx, &types.CreateDocumentRequest{
		Subject: "python", Name: "Basics", Content: "Variables and types.",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &types.CreateDocumentRequest{
		Subject: "python", Name: "Advanced", Content: "Metaclasses.",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &types.CreateDocumentRequest{
		Subject: "sql", Name: "Joins", Content: "Inner and outer joins.",
	})
	require.NoError(t, err)

	text, err := svc.ContextForSubject(ctx, "python")
	require.NoError(t, err)
	assert.Contains(t, text, "## Basics")
	assert.Contains(t, text, "Variables and types.")
	assert.Contains(t, text, "## Advanced")
	assert.NotContains(t, text, "Joins")
}

func TestContextForSubject_Empty(t *testing.T) {
	svc := NewService(newFakeStore(), false, false)

	text, err := svc.ContextForSubject(context.Background(), "python")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestContextForSubject_Truncates(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, false, false)

	ctx := context.Background()
	big := strings.Repeat("All work and no play. ", MaxContextChars/20)
	_, err := svc.Create(ctx, &types.CreateDocumentRequest{
		Subject: "python", Name: "Huge", Content: big,
	})
	require.NoError(t, err)

	text, err := svc.ContextForSubject(ctx, "python")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), MaxContextChars)
}

func TestContextForSubject_TruncatesOnRuneBoundary(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, false, false)

	ctx := context.Background()
	// Two-byte runes throughout, so a byte-offset cut would split one.
	big := strings.Repeat("é", MaxContextChars)
	_, err := svc.Create(ctx, &types.CreateDocumentRequest{
		Subject: "python", Name: "Huge", Content: big,
	})
	require.NoError(t, err)

	text, err := svc.ContextForSubject(ctx, "python")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), MaxContextChars)
	assert.True(t, utf8.ValidString(text))
}
