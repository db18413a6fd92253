package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// User represents a user profile
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PipelineRun represents one content generation job
type PipelineRun struct {
	ID                 uuid.UUID                 `json:"id"`
	UserID             uuid.UUID                 `json:"user_id"`
	Subject            string                    `json:"subject"`
	Status             types.PipelineStatusValue `json:"status"`
	CurrentStage       types.PipelineStage       `json:"current_stage"`
	ProgressPercentage *int                      `json:"progress_percentage,omitempty"`
	LessonsCompleted   *int                      `json:"lessons_completed,omitempty"`
	TotalLessons       *int                      `json:"total_lessons,omitempty"`
	Message            string                    `json:"message,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	CompletedAt        *time.Time                `json:"completed_at,omitempty"`
}

// Snapshot converts the stored run into the wire-format status snapshot.
func (r *PipelineRun) Snapshot() types.PipelineStatus {
	return types.PipelineStatus{
		Status:             r.Status,
		CurrentStage:       r.CurrentStage,
		ProgressPercentage: r.ProgressPercentage,
		LessonsCompleted:   r.LessonsCompleted,
		TotalLessons:       r.TotalLessons,
		Message:            r.Message,
	}
}

// StageRecord is the audit trail row for one stage transition of a run
type StageRecord struct {
	ID          uuid.UUID           `json:"id"`
	RunID       uuid.UUID           `json:"run_id"`
	Stage       types.PipelineStage `json:"stage"`
	Status      string              `json:"status"`
	Message     string              `json:"message,omitempty"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	DurationMs  *int                `json:"duration_ms,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// StageRecord status constants
const (
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
	StageStatusFailed     = "failed"
)
