// Package documents manages the admin-curated reference texts that ground
// lesson generation for a subject. Documents are uploaded directly or
// ingested from a URL with HTML-to-text extraction.
package documents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/fetch"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateDocument(ctx context.Context, doc *types.Document) (uuid.UUID, error)
	GetDocument(ctx context.Context, docID uuid.UUID) (*types.Document, error)
	ListDocuments(ctx context.Context, subject string) ([]types.DocumentSummary, error)
	ListDocumentContents(ctx context.Context, subject string) ([]types.Document, error)
	DeleteDocument(ctx context.Context, docID uuid.UUID) error
}

// MaxContextChars caps the assembled generation context so prompts stay
// within model input limits.
const MaxContextChars = 60000

// Service coordinates document storage and URL ingestion.
type Service struct {
	store      Store
	useBrowser bool
	verbose    bool
}

// NewService creates a document service. When useBrowser is true, URL
// ingestion falls back to headless rendering for client-rendered pages.
func NewService(store Store, useBrowser, verbose bool) *Service {
	return &Service{
		store:      store,
		useBrowser: useBrowser,
		verbose:    verbose,
	}
}

// Create stores a document from a create request. When the request carries
// content, it is cleaned and stored directly; otherwise the source URL is
// fetched and its main text extracted.
func (s *Service) Create(ctx context.Context, req *types.CreateDocumentRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}
	if req.Content == "" && req.SourceURL == "" {
		return uuid.Nil, fmt.Errorf("either content or source_url is required")
	}

	content := req.Content
	if content == "" {
		text, err := s.ingestURL(ctx, req.SourceURL)
		if err != nil {
			return uuid.Nil, err
		}
		content = text
	} else {
		content = CleanText(content)
	}

	if strings.TrimSpace(content) == "" {
		return uuid.Nil, fmt.Errorf("document content is empty after cleaning")
	}

	return s.store.CreateDocument(ctx, &types.Document{
		Subject:   req.Subject,
		Name:      req.Name,
		SourceURL: req.SourceURL,
		Content:   content,
	})
}

// Get returns a document with its content, or nil if not found.
func (s *Service) Get(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	return s.store.GetDocument(ctx, docID)
}

// List returns document summaries, optionally filtered by subject.
func (s *Service) List(ctx context.Context, subject string) ([]types.DocumentSummary, error) {
	return s.store.ListDocuments(ctx, subject)
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, docID uuid.UUID) error {
	return s.store.DeleteDocument(ctx, docID)
}

// ContextForSubject assembles the reference context passed to generation
// prompts. Documents are concatenated oldest first under name headers and
// truncated at MaxContextChars.
func (s *Service) ContextForSubject(ctx context.Context, subject string) (string, error) {
	docs, err := s.store.ListDocumentContents(ctx, subject)
	if err != nil {
		return "", fmt.Errorf("failed to load documents for %s: %w", subject, err)
	}
	if len(docs) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, doc := range docs {
		section := fmt.Sprintf("## %s\n\n%s\n\n", doc.Name, doc.Content)
		if sb.Len()+len(section) > MaxContextChars {
			remaining := MaxContextChars - sb.Len()
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			for remaining > 0 && !utf8.RuneStart(section[remaining]) {
				remaining--
			}
			if remaining > 0 {
				sb.WriteString(section[:remaining])
			}
			break
		}
		sb.WriteString(section)
	}

	return strings.TrimSpace(sb.String()), nil
}

// ingestURL fetches a URL and extracts its main text, falling back to
// headless browser rendering when the static HTML carries too little content.
func (s *Service) ingestURL(ctx context.Context, urlStr string) (string, error) {
	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", urlStr, err)
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.DocSelectors())
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", urlStr, err)
	}

	if s.useBrowser && fetch.ShouldUseBrowser(text) {
		if s.verbose {
			log.Printf("[VERBOSE] Content too short (%d chars), falling back to browser rendering", len(text))
		}
		browserHTML, browserErr := fetch.WithBrowser(ctx, urlStr, fetch.DefaultTimeout, s.verbose)
		if browserErr != nil {
			if s.verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", browserErr)
			}
		} else if rendered, extractErr := fetch.ExtractMainText(browserHTML, fetch.DocSelectors()); extractErr == nil {
			text = rendered
		}
	}

	return CleanText(text), nil
}
