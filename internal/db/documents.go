package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// CreateDocument stores a reference document and returns its ID
func (db *DB) CreateDocument(ctx context.Context, doc *types.Document) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO documents (subject, name, source_url, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		doc.Subject, doc.Name, doc.SourceURL, doc.Content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create document: %w", err)
	}
	return id, nil
}

// GetDocument retrieves a document with its content
func (db *DB) GetDocument(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	var doc types.Document
	err := db.pool.QueryRow(ctx,
		`SELECT id, subject, name, COALESCE(source_url, ''), content, created_at, updated_at
		 FROM documents WHERE id = $1`,
		docID,
	).Scan(&doc.ID, &doc.Subject, &doc.Name, &doc.SourceURL, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments retrieves document summaries, optionally filtered by subject
func (db *DB) ListDocuments(ctx context.Context, subject string) ([]types.DocumentSummary, error) {
	query := `SELECT id, subject, name, COALESCE(source_url, ''), LENGTH(content), created_at
	          FROM documents`
	args := []any{}
	if subject != "" {
		query += ` WHERE subject = $1`
		args = append(args, subject)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []types.DocumentSummary
	for rows.Next() {
		var d types.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Subject, &d.Name, &d.SourceURL, &d.SizeChars, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// ListDocumentContents retrieves the full text of every document for a subject,
// oldest first. Used to assemble generation context.
func (db *DB) ListDocumentContents(ctx context.Context, subject string) ([]types.Document, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, subject, name, COALESCE(source_url, ''), content, created_at, updated_at
		 FROM documents WHERE subject = $1 ORDER BY created_at`,
		subject,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list document contents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var d types.Document
		if err := rows.Scan(&d.ID, &d.Subject, &d.Name, &d.SourceURL, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// DeleteDocument removes a document
func (db *DB) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document not found: %s", docID)
	}
	return nil
}
