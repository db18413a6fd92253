package types

// PipelineStatusValue is the lifecycle state of a content generation run.
type PipelineStatusValue string

const (
	PipelineStarted    PipelineStatusValue = "started"
	PipelineInProgress PipelineStatusValue = "in_progress"
	PipelineCompleted  PipelineStatusValue = "completed"
	PipelineFailed     PipelineStatusValue = "failed"
)

// IsTerminal reports whether the run has finished, successfully or not.
func (v PipelineStatusValue) IsTerminal() bool {
	return v == PipelineCompleted || v == PipelineFailed
}

// PipelineStage identifies which phase of generation a run is in.
type PipelineStage string

const (
	StageInitializing         PipelineStage = "initializing"
	StageCurriculumGeneration PipelineStage = "curriculum_generation"
	StageLessonPlanning       PipelineStage = "lesson_planning"
	StageContentGeneration    PipelineStage = "content_generation"
	StageCompleted            PipelineStage = "completed"
)

// stageProgress maps each stage to the percentage shown when the run
// reports no explicit progress value.
var stageProgress = map[PipelineStage]int{
	StageInitializing:         5,
	StageCurriculumGeneration: 20,
	StageLessonPlanning:       50,
	StageContentGeneration:    80,
	StageCompleted:            100,
}

// ProgressForStage returns the display percentage for a stage,
// or 0 for an unrecognized stage.
func ProgressForStage(stage PipelineStage) int {
	return stageProgress[stage]
}

// PipelineStatus is the wire-format snapshot of a run returned by the
// status endpoint and delivered to poller callbacks.
type PipelineStatus struct {
	Status             PipelineStatusValue `json:"status"`
	CurrentStage       PipelineStage       `json:"current_stage"`
	ProgressPercentage *int                `json:"progress_percentage,omitempty"`
	LessonsCompleted   *int                `json:"lessons_completed,omitempty"`
	TotalLessons       *int                `json:"total_lessons,omitempty"`
	Message            string              `json:"message,omitempty"`
}

// Progress returns the explicit percentage when the snapshot carries one,
// otherwise the percentage derived from the current stage.
func (s PipelineStatus) Progress() int {
	if s.ProgressPercentage != nil {
		return *s.ProgressPercentage
	}
	return ProgressForStage(s.CurrentStage)
}

// StartPipelineRequest is the request body for starting a generation run.
type StartPipelineRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Subject string `json:"subject" validate:"required"`
}

// Validate validates the StartPipelineRequest using the validator.
func (r *StartPipelineRequest) Validate() error {
	return validate.Struct(r)
}

// StartPipelineResponse is returned when a generation run is accepted.
type StartPipelineResponse struct {
	RunID   string              `json:"run_id"`
	Status  PipelineStatusValue `json:"status"`
	Subject string              `json:"subject"`
}
