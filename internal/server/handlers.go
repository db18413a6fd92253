package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/server/middleware"
)

// pathUserID parses the user_id path value, writing a validation error on failure.
func (s *Server) pathUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}

// pathSubject reads the subject path value, writing a validation error when empty.
func (s *Server) pathSubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	subject := r.PathValue("subject")
	if subject == "" {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Subject is required")
		return "", false
	}
	return subject, true
}

// requireOwnUser restricts a user-scoped route to the token holder. A token
// for one user cannot read or mutate another user's resources. Malformed
// path IDs fall through so handlers report them as validation errors.
func (s *Server) requireOwnUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authID, err := middleware.GetUserID(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, CodeUnauthorized, "Missing or invalid authorization token")
			return
		}
		pathID, err := uuid.Parse(r.PathValue("user_id"))
		if err == nil && pathID != authID {
			s.errorResponse(w, http.StatusForbidden, CodeForbidden, "Token does not match requested user")
			return
		}
		next(w, r)
	})
}

// requireAdmin restricts a route to users with the admin flag set.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authID, err := middleware.GetUserID(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, CodeUnauthorized, "Missing or invalid authorization token")
			return
		}
		isAdmin, err := s.userService.IsAdmin(r.Context(), authID)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Failed to check permissions")
			return
		}
		if !isAdmin {
			s.errorResponse(w, http.StatusForbidden, CodeForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}

// requireSubscription enforces the subscription gate for subject content.
// Writes a 402 SUBSCRIPTION_REQUIRED envelope and returns false when the
// user has no active subscription for the subject.
func (s *Server) requireSubscription(w http.ResponseWriter, r *http.Request, userID uuid.UUID, subject string) bool {
	active, err := s.db.HasActiveSubscription(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return false
	}
	if !active {
		s.errorFrom(w, &ErrSubscriptionRequired{Subject: subject})
		return false
	}
	return true
}
