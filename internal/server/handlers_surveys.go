package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ---------------------------------------------------------------------
// Survey Handlers
// ---------------------------------------------------------------------

func (s *Server) handleGenerateSurvey(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}
	if !s.requireSubscription(w, r, userID, subject) {
		return
	}

	survey, err := s.surveys.Generate(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Survey generation failed: "+err.Error())
		return
	}

	// Answers stay server side. Serve the same redacted view as GET.
	redacted, err := s.surveys.Get(r.Context(), userID, subject)
	if err != nil || redacted == nil {
		redacted = survey
	}

	s.jsonResponse(w, http.StatusCreated, redacted)
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}
	if !s.requireSubscription(w, r, userID, subject) {
		return
	}

	survey, err := s.surveys.Get(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if survey == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "No survey for subject: "+subject)
		return
	}

	s.jsonResponse(w, http.StatusOK, survey)
}

func (s *Server) handleSubmitSurvey(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}
	if !s.requireSubscription(w, r, userID, subject) {
		return
	}

	var req types.SubmitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid JSON in request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "answers must contain at least one entry")
		return
	}

	result, err := s.surveys.Submit(r.Context(), userID, subject, req.Answers)
	if err != nil {
		if strings.Contains(err.Error(), "no survey found") {
			s.errorResponse(w, http.StatusNotFound, CodeNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleSurveyResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}
	if !s.requireSubscription(w, r, userID, subject) {
		return
	}

	result, err := s.surveys.Result(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if result == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "No survey result for subject: "+subject)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}
