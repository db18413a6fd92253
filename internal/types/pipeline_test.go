package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressForStage(t *testing.T) {
	tests := []struct {
		stage PipelineStage
		want  int
	}{
		{StageInitializing, 5},
		{StageCurriculumGeneration, 20},
		{StageLessonPlanning, 50},
		{StageContentGeneration, 80},
		{StageCompleted, 100},
		{PipelineStage("unknown"), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgressForStage(tt.stage), "stage %s", tt.stage)
	}
}

func TestPipelineStatusProgress_ExplicitWins(t *testing.T) {
	pct := 42
	status := PipelineStatus{
		Status:             PipelineInProgress,
		CurrentStage:       StageLessonPlanning,
		ProgressPercentage: &pct,
	}
	assert.Equal(t, 42, status.Progress())
}

func TestPipelineStatusProgress_DerivedFromStage(t *testing.T) {
	status := PipelineStatus{
		Status:       PipelineInProgress,
		CurrentStage: StageContentGeneration,
	}
	assert.Equal(t, 80, status.Progress())
}

func TestPipelineStatusValueIsTerminal(t *testing.T) {
	assert.False(t, PipelineStarted.IsTerminal())
	assert.False(t, PipelineInProgress.IsTerminal())
	assert.True(t, PipelineCompleted.IsTerminal())
	assert.True(t, PipelineFailed.IsTerminal())
}

func TestStartPipelineRequestValidate(t *testing.T) {
	req := StartPipelineRequest{UserID: "u1", Subject: "python"}
	assert.NoError(t, req.Validate())

	missing := StartPipelineRequest{Subject: "python"}
	assert.Error(t, missing.Validate())
}
