package types

import (
	"time"

	"github.com/google/uuid"
)

// Document is one reference text in the admin-managed store used to ground
// lesson generation for a subject.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	SourceURL string    `json:"source_url,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary is the listing view of a document, without content.
type DocumentSummary struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	SourceURL string    `json:"source_url,omitempty"`
	SizeChars int       `json:"size_chars"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateDocumentRequest is the request body for uploading or ingesting a document.
// Exactly one of Content or SourceURL must be provided.
type CreateDocumentRequest struct {
	Subject   string `json:"subject" validate:"required,min=1"`
	Name      string `json:"name" validate:"required,min=1"`
	Content   string `json:"content,omitempty"`
	SourceURL string `json:"source_url,omitempty" validate:"omitempty,url"`
}

// Validate validates the CreateDocumentRequest using the validator.
func (r *CreateDocumentRequest) Validate() error {
	return validate.Struct(r)
}
