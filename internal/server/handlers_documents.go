package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ---------------------------------------------------------------------
// Admin Document Handlers
// ---------------------------------------------------------------------

func (s *Server) pathDocumentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	docID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid document ID")
		return uuid.Nil, false
	}
	return docID, true
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req types.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid JSON in request body")
		return
	}

	docID, err := s.documents.Create(r.Context(), &req)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) || strings.Contains(err.Error(), "content or source_url") {
			s.errorResponse(w, http.StatusBadRequest, CodeValidationError, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Document ingestion failed: "+err.Error())
		return
	}

	doc, err := s.documents.Get(r.Context(), docID)
	if err != nil || doc == nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Failed to load stored document")
		return
	}

	s.jsonResponse(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")

	docs, err := s.documents.List(r.Context(), subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := s.pathDocumentID(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), docID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "Document not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := s.pathDocumentID(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), docID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "Document not found")
		return
	}

	if err := s.documents.Delete(r.Context(), docID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "id": docID.String()})
}
