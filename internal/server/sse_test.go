package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

func TestSSEWriter_Headers(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)
	require.NotNil(t, sse)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestSSEWriter_WriteEvent(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	err = sse.WriteEvent("status", map[string]string{"stage": "initializing"})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Contains(t, body, "event: status\n")
	assert.Contains(t, body, `data: {"stage":"initializing"}`)
	assert.True(t, w.Flushed)
}

func TestSSEWriter_WriteStatus(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	err = sse.WriteStatus(types.PipelineStatus{
		Status:       types.PipelineInProgress,
		CurrentStage: types.StageCurriculumGeneration,
	})
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), "event: status\n")
}

func TestSSEWriter_WriteStatus_Terminal(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	err = sse.WriteStatus(types.PipelineStatus{
		Status:       types.PipelineCompleted,
		CurrentStage: types.StageCompleted,
	})
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), "event: complete\n")
}

func TestSSEWriter_WriteError(t *testing.T) {
	w := httptest.NewRecorder()
	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	sse.WriteError("run lookup failed")

	body := w.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, "run lookup failed")
}
