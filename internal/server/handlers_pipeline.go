package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ---------------------------------------------------------------------
// Content Generation Handlers
// ---------------------------------------------------------------------

func (s *Server) pathRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	runID, err := uuid.Parse(r.PathValue("run_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid run ID")
		return uuid.Nil, false
	}
	return runID, true
}

// handleStartPipeline accepts a generation request and runs the pipeline in
// the background. Requires an active subscription and a graded survey.
func (s *Server) handleStartPipeline(w http.ResponseWriter, r *http.Request) {
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

	result, err := s.db.GetSurveyResult(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if result == nil {
		s.errorFrom(w, &ErrPrerequisiteMissing{Subject: subject, Missing: "survey results"})
		return
	}

	runID, err := s.db.CreatePipelineRun(r.Context(), userID, subject)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	// The run outlives the request. Failures are recorded on the run row and
	// surfaced through the status endpoint.
	go func() {
		if err := s.runner.Run(context.Background(), runID, userID, subject); err != nil {
			log.Printf("[pipeline] run %s failed: %v", runID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, types.StartPipelineResponse{
		RunID:   runID.String(),
		Status:  types.PipelineStarted,
		Subject: subject,
	})
}

func (s *Server) handlePipelineStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetPipelineRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if run == nil || run.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "Pipeline run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run.Snapshot())
}

// handlePipelineStream streams run status snapshots over SSE until the run
// reaches a terminal state or the client disconnects.
func (s *Server) handlePipelineStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUserID(w, r)
	if !ok {
		return
	}
	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetPipelineRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if run == nil || run.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, "Pipeline run not found")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	if err := sse.WriteStatus(run.Snapshot()); err != nil {
		return
	}
	if run.Status.IsTerminal() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			run, err := s.db.GetPipelineRun(r.Context(), runID)
			if err != nil || run == nil {
				sse.WriteError("failed to read run status")
				return
			}
			if err := sse.WriteStatus(run.Snapshot()); err != nil {
				return
			}
			if run.Status.IsTerminal() {
				return
			}
		}
	}
}
