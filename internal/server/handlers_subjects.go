package server

import (
	"net/http"
	"time"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ---------------------------------------------------------------------
// Subject Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.db.ListSubjects(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// handleSubjectStatuses returns the per-user view of every subject: locked
// state from the subscription gate plus survey and lesson progress.
func (s *Server) handleSubjectStatuses(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}

	subjects, err := s.db.ListSubjects(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	subscriptions, err := s.db.ListSubscriptions(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	now := time.Now()
	active := make(map[string]bool, len(subscriptions))
	for i := range subscriptions {
		if subscriptions[i].IsActive(now) {
			active[subscriptions[i].Subject] = true
		}
	}

	statuses := make([]types.SubjectStatus, 0, len(subjects))
	for _, subject := range subjects {
		status := types.SubjectStatus{
			Subject: subject.ID,
			Locked:  !active[subject.ID],
		}

		if !status.Locked {
			result, err := s.db.GetSurveyResult(r.Context(), userID, subject.ID)
			if err != nil {
				s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
				return
			}
			if result != nil {
				status.HasSurvey = true
				status.SkillLevel = result.SkillLevel
			}

			progress, err := s.db.GetProgress(r.Context(), userID, subject.ID)
			if err != nil {
				s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
				return
			}
			if progress != nil && progress.TotalLessons > 0 {
				status.HasLessons = true
				status.Progress = progress
			}
		}

		statuses = append(statuses, status)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"subjects": statuses})
}
