package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ---------------------------------------------------------------------
// Subscription Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}

	subs, err := s.db.ListSubscriptions(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

func (s *Server) handlePurchaseSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}

	var req types.PurchaseSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid JSON in request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "plan must be monthly or yearly")
		return
	}

	sub, err := s.db.GetSubject(r.Context(), subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if sub == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "Subject not found: "+subject)
		return
	}

	expiresAt := subscriptionExpiry(req.Plan, time.Now())
	created, err := s.db.CreateSubscription(r.Context(), userID, subject, req.Plan, &expiresAt)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	subject, ok := s.pathSubject(w, r)
	if !ok {
		return
	}

	existing, err := s.db.GetSubscription(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "No subscription for subject: "+subject)
		return
	}

	if err := s.db.CancelSubscription(r.Context(), userID, subject); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "cancelled", "subject": subject})
}

// subscriptionExpiry computes the access window for a plan.
func subscriptionExpiry(plan string, from time.Time) time.Time {
	if plan == "yearly" {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
