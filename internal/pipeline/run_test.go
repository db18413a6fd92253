package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
	"github.com/MikeHibbert/MindCoach-sub001/internal/llm"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// fakeStore records pipeline state transitions in memory.
type fakeStore struct {
	mu           sync.Mutex
	surveyResult *types.SurveyResult
	stages       []types.PipelineStage
	closed       map[types.PipelineStage]string
	lessons      map[int]types.Lesson
	completed    int
	total        int
	runDone      bool
	runFailed    bool
	failMessage  string
}

func newFakeStore(result *types.SurveyResult) *fakeStore {
	return &fakeStore{
		surveyResult: result,
		closed:       make(map[types.PipelineStage]string),
		lessons:      make(map[int]types.Lesson),
	}
}

func (f *fakeStore) GetSurveyResult(_ context.Context, _ uuid.UUID, _ string) (*types.SurveyResult, error) {
	return f.surveyResult, nil
}

func (f *fakeStore) UpdatePipelineStage(_ context.Context, _ uuid.UUID, stage types.PipelineStage, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
	return nil
}

func (f *fakeStore) UpdatePipelineLessonCounts(_ context.Context, _ uuid.UUID, completed, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = completed
	f.total = total
	return nil
}

func (f *fakeStore) CompletePipelineRun(_ context.Context, _ uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runDone = true
	return nil
}

func (f *fakeStore) FailPipelineRun(_ context.Context, _ uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runFailed = true
	f.failMessage = message
	return nil
}

func (f *fakeStore) CreateStageRecord(_ context.Context, _ uuid.UUID, _ types.PipelineStage) (*db.StageRecord, error) {
	return &db.StageRecord{}, nil
}

func (f *fakeStore) CloseStageRecord(_ context.Context, _ uuid.UUID, stage types.PipelineStage, status, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[stage] = status
	return nil
}

func (f *fakeStore) ReplaceLessons(_ context.Context, _ uuid.UUID, _ string, lessons []types.Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lessons = make(map[int]types.Lesson)
	for _, l := range lessons {
		f.lessons[l.LessonNumber] = l
	}
	return nil
}

func (f *fakeStore) SaveLesson(_ context.Context, _ uuid.UUID, _ string, lesson *types.Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lessons[lesson.LessonNumber] = *lesson
	return nil
}

// fakeDocs supplies fixed reference material.
type fakeDocs struct{ text string }

func (f *fakeDocs) ContextForSubject(_ context.Context, _ string) (string, error) {
	return f.text, nil
}

// scriptedLLM answers prompts by substring match so each stage gets the
// right artifact shape.
type scriptedLLM struct {
	curriculum string
	plans      string
	contentErr error
}

func (s *scriptedLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if strings.Contains(prompt, "curriculum designer") {
		return s.curriculum, nil
	}
	if strings.Contains(prompt, "lesson planner") {
		return s.plans, nil
	}
	return "", fmt.Errorf("unexpected JSON prompt")
}

func (s *scriptedLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if s.contentErr != nil {
		return "", s.contentErr
	}
	return "# Lesson\n\nGenerated content.", nil
}

func (s *scriptedLLM) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (s *scriptedLLM) Close() error                    { return nil }

func workingLLM() *scriptedLLM {
	return &scriptedLLM{
		curriculum: `{
			"subject": "python",
			"skill_level": "beginner",
			"topics": [
				{"lesson_number": 1, "title": "Variables"},
				{"lesson_number": 2, "title": "Control Flow"}
			]
		}`,
		plans: `[
			{"lesson_number": 2, "title": "Control Flow", "objectives": ["Use if statements"], "sections": ["Branching"]},
			{"lesson_number": 1, "title": "Variables", "objectives": ["Declare variables"], "sections": ["Assignment"]}
		]`,
	}
}

func beginnerResult() *types.SurveyResult {
	return &types.SurveyResult{
		Subject:        "python",
		SkillLevel:     types.LevelBeginner,
		CorrectAnswers: 2,
		TotalQuestions: 8,
	}
}

func TestRun_FullPipeline(t *testing.T) {
	store := newFakeStore(beginnerResult())
	runner := NewRunner(store, &fakeDocs{text: "Reference notes."}, workingLLM(), Options{})

	err := runner.Run(context.Background(), uuid.New(), uuid.New(), "python")
	require.NoError(t, err)

	assert.True(t, store.runDone)
	assert.False(t, store.runFailed)

	// Stage order
	assert.Equal(t, []types.PipelineStage{
		types.StageCurriculumGeneration,
		types.StageLessonPlanning,
		types.StageContentGeneration,
	}, store.stages)

	// All stage records closed successfully
	for _, stage := range []types.PipelineStage{
		types.StageInitializing,
		types.StageCurriculumGeneration,
		types.StageLessonPlanning,
		types.StageContentGeneration,
	} {
		assert.Equal(t, db.StageStatusCompleted, store.closed[stage], "stage %s", stage)
	}

	// Both lessons persisted with content
	require.Len(t, store.lessons, 2)
	assert.Equal(t, "Variables", store.lessons[1].Title)
	assert.Contains(t, store.lessons[1].Content, "Generated content")
	assert.Equal(t, 2, store.completed)
	assert.Equal(t, 2, store.total)
}

func TestRun_MissingSurveyResult(t *testing.T) {
	store := newFakeStore(nil)
	runner := NewRunner(store, nil, workingLLM(), Options{})

	err := runner.Run(context.Background(), uuid.New(), uuid.New(), "python")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complete the survey first")
	assert.True(t, store.runFailed)
	assert.False(t, store.runDone)
	assert.Equal(t, db.StageStatusFailed, store.closed[types.StageInitializing])
}

func TestRun_InvalidCurriculumFailsRun(t *testing.T) {
	client := workingLLM()
	client.curriculum = `{"subject": "python"}`
	store := newFakeStore(beginnerResult())
	runner := NewRunner(store, nil, client, Options{})

	err := runner.Run(context.Background(), uuid.New(), uuid.New(), "python")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
	assert.True(t, store.runFailed)
	assert.Equal(t, db.StageStatusFailed, store.closed[types.StageCurriculumGeneration])
}

func TestRun_ContentFailureFailsRun(t *testing.T) {
	client := workingLLM()
	client.contentErr = fmt.Errorf("model unavailable")
	store := newFakeStore(beginnerResult())
	runner := NewRunner(store, nil, client, Options{})

	err := runner.Run(context.Background(), uuid.New(), uuid.New(), "python")
	require.Error(t, err)
	assert.True(t, store.runFailed)
	assert.Contains(t, store.failMessage, "model unavailable")
	assert.Equal(t, db.StageStatusFailed, store.closed[types.StageContentGeneration])
}

func TestRun_CapsTopicsAtMaxLessons(t *testing.T) {
	client := workingLLM()
	client.curriculum = `{
		"subject": "python",
		"skill_level": "beginner",
		"topics": [
			{"lesson_number": 1, "title": "One"},
			{"lesson_number": 2, "title": "Two"},
			{"lesson_number": 3, "title": "Three"}
		]
	}`
	client.plans = `[{"lesson_number": 1, "title": "One", "objectives": ["Learn"]}]`
	store := newFakeStore(beginnerResult())
	runner := NewRunner(store, nil, client, Options{MaxLessons: 1})

	err := runner.Run(context.Background(), uuid.New(), uuid.New(), "python")
	require.NoError(t, err)
	assert.Len(t, store.lessons, 1)
}

func TestBulletList(t *testing.T) {
	assert.Equal(t, "(none)", bulletList(nil))
	assert.Equal(t, "- a\n- b", bulletList([]string{"a", "b"}))
}
