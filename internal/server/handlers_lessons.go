package server

import (
	"fmt"
	"net/http"
	"strconv"
)

// ---------------------------------------------------------------------
// Lesson and Progress Handlers
// ---------------------------------------------------------------------

func (s *Server) pathLessonNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("lesson_number"))
	if err != nil || n < 1 {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid lesson number")
		return 0, false
	}
	return n, true
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
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

	lessons, err := s.db.ListLessons(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"subject": subject, "lessons": lessons})
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}
	lessonNumber, ok := s.pathLessonNumber(w, r)
	if !ok {
		return
	}
	if !s.requireSubscription(w, r, userID, subject) {
		return
	}

	lesson, err := s.db.GetLesson(r.Context(), userID, subject, lessonNumber)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if lesson == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("Lesson %d not found for subject %s", lessonNumber, subject))
		return
	}

	s.jsonResponse(w, http.StatusOK, lesson)
}

func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}
	lessonNumber, ok := s.pathLessonNumber(w, r)
	if !ok {
		return
	}
	if !s.requireSubscription(w, r, userID, subject) {
		return
	}

	lesson, err := s.db.GetLesson(r.Context(), userID, subject, lessonNumber)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if lesson == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("Lesson %d not found for subject %s", lessonNumber, subject))
		return
	}

	if err := s.db.MarkLessonComplete(r.Context(), userID, subject, lessonNumber); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	progress, err := s.db.GetProgress(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, progress)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
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

	progress, err := s.db.GetProgress(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, progress)
}
