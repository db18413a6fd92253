package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

func TestStageStatusConstants(t *testing.T) {
	statuses := []string{
		StageStatusInProgress,
		StageStatusCompleted,
		StageStatusFailed,
	}
	for _, status := range statuses {
		assert.NotEmpty(t, status, "stage status constant should not be empty")
	}
}

func TestPipelineRunSnapshot(t *testing.T) {
	pct := 50
	completed := 2
	total := 8
	run := PipelineRun{
		Status:             types.PipelineInProgress,
		CurrentStage:       types.StageLessonPlanning,
		ProgressPercentage: &pct,
		LessonsCompleted:   &completed,
		TotalLessons:       &total,
		Message:            "Planning lessons",
	}

	snap := run.Snapshot()
	assert.Equal(t, types.PipelineInProgress, snap.Status)
	assert.Equal(t, types.StageLessonPlanning, snap.CurrentStage)
	assert.Equal(t, 50, snap.Progress())
	assert.Equal(t, 2, *snap.LessonsCompleted)
	assert.Equal(t, 8, *snap.TotalLessons)
	assert.Equal(t, "Planning lessons", snap.Message)
}

func TestPipelineRunSnapshot_DerivedProgress(t *testing.T) {
	run := PipelineRun{
		Status:       types.PipelineInProgress,
		CurrentStage: types.StageContentGeneration,
	}
	assert.Equal(t, 80, run.Snapshot().Progress())
}
