// Package pipeline orchestrates the staged generation of a subject's
// lessons: curriculum design, per-lesson planning, then lesson content.
// Progress is persisted after every stage so the status endpoint and
// pollers always see the current state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
	"github.com/MikeHibbert/MindCoach-sub001/internal/llm"
	"github.com/MikeHibbert/MindCoach-sub001/internal/observability"
	"github.com/MikeHibbert/MindCoach-sub001/internal/prompts"
	"github.com/MikeHibbert/MindCoach-sub001/internal/schemas"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// DefaultMaxLessons caps the curriculum length when no limit is configured.
const DefaultMaxLessons = 10

// DefaultLessonParallel is the number of lessons generated concurrently.
const DefaultLessonParallel = 3

// Store is the persistence surface the runner needs.
type Store interface {
	GetSurveyResult(ctx context.Context, userID uuid.UUID, subject string) (*types.SurveyResult, error)
	UpdatePipelineStage(ctx context.Context, runID uuid.UUID, stage types.PipelineStage, message string) error
	UpdatePipelineLessonCounts(ctx context.Context, runID uuid.UUID, completed, total int) error
	CompletePipelineRun(ctx context.Context, runID uuid.UUID, message string) error
	FailPipelineRun(ctx context.Context, runID uuid.UUID, message string) error
	CreateStageRecord(ctx context.Context, runID uuid.UUID, stage types.PipelineStage) (*db.StageRecord, error)
	CloseStageRecord(ctx context.Context, runID uuid.UUID, stage types.PipelineStage, status, message string) error
	ReplaceLessons(ctx context.Context, userID uuid.UUID, subject string, lessons []types.Lesson) error
	SaveLesson(ctx context.Context, userID uuid.UUID, subject string, lesson *types.Lesson) error
}

// ContextProvider supplies the reference material for generation prompts.
type ContextProvider interface {
	ContextForSubject(ctx context.Context, subject string) (string, error)
}

// Options configures a generation run.
type Options struct {
	MaxLessons     int
	LessonParallel int
	Verbose        bool
	Printer        *observability.Printer
}

// Runner executes generation runs against a store and an LLM client.
type Runner struct {
	store  Store
	docs   ContextProvider
	client llm.Client
	opts   Options
}

// NewRunner creates a pipeline runner.
func NewRunner(store Store, docs ContextProvider, client llm.Client, opts Options) *Runner {
	if opts.MaxLessons <= 0 {
		opts.MaxLessons = DefaultMaxLessons
	}
	if opts.LessonParallel <= 0 {
		opts.LessonParallel = DefaultLessonParallel
	}
	return &Runner{store: store, docs: docs, client: client, opts: opts}
}

// Run executes the full generation pipeline for an already-created run.
// On failure the run is marked failed with the error message and the error
// is returned. Lessons from a previous run for the same subject are replaced.
func (r *Runner) Run(ctx context.Context, runID, userID uuid.UUID, subject string) error {
	skillLevel, docContext, err := r.initialize(ctx, runID, userID, subject)
	if err != nil {
		return r.fail(ctx, runID, types.StageInitializing, err)
	}

	curriculum, err := r.generateCurriculum(ctx, runID, subject, skillLevel, docContext)
	if err != nil {
		return r.fail(ctx, runID, types.StageCurriculumGeneration, err)
	}

	plans, err := r.planLessons(ctx, runID, curriculum)
	if err != nil {
		return r.fail(ctx, runID, types.StageLessonPlanning, err)
	}

	if err := r.generateContent(ctx, runID, userID, subject, skillLevel, docContext, plans); err != nil {
		return r.fail(ctx, runID, types.StageContentGeneration, err)
	}

	message := fmt.Sprintf("Generated %d lessons for %s", len(plans), subject)
	if err := r.store.CompletePipelineRun(ctx, runID, message); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	return nil
}

// initialize resolves the prerequisites for a run: the graded skill level
// and the reference document context.
func (r *Runner) initialize(ctx context.Context, runID, userID uuid.UUID, subject string) (types.SkillLevel, string, error) {
	if _, err := r.store.CreateStageRecord(ctx, runID, types.StageInitializing); err != nil {
		return "", "", err
	}

	result, err := r.store.GetSurveyResult(ctx, userID, subject)
	if err != nil {
		return "", "", err
	}
	if result == nil {
		return "", "", fmt.Errorf("no survey result for subject %s, complete the survey first", subject)
	}

	docContext := ""
	if r.docs != nil {
		docContext, err = r.docs.ContextForSubject(ctx, subject)
		if err != nil {
			return "", "", err
		}
	}

	msg := fmt.Sprintf("skill level %s, %d chars of reference material", result.SkillLevel, len(docContext))
	if err := r.store.CloseStageRecord(ctx, runID, types.StageInitializing, db.StageStatusCompleted, msg); err != nil {
		return "", "", err
	}

	return result.SkillLevel, docContext, nil
}

// generateCurriculum runs the curriculum_generation stage.
func (r *Runner) generateCurriculum(ctx context.Context, runID uuid.UUID, subject string, skillLevel types.SkillLevel, docContext string) (*types.Curriculum, error) {
	if err := r.enterStage(ctx, runID, types.StageCurriculumGeneration, "Designing curriculum"); err != nil {
		return nil, err
	}

	prompt := prompts.Format(prompts.MustGet("curriculum.json", "generate"), map[string]string{
		"Subject":     subject,
		"SkillLevel":  string(skillLevel),
		"Context":     docContext,
		"LessonCount": strconv.Itoa(r.opts.MaxLessons),
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("curriculum generation failed: %w", err)
	}
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.ArtifactCurriculum, raw); err != nil {
		return nil, fmt.Errorf("curriculum did not match schema: %w", err)
	}

	var curriculum types.Curriculum
	if err := json.Unmarshal([]byte(raw), &curriculum); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum: %w", err)
	}
	curriculum.Subject = subject
	curriculum.SkillLevel = skillLevel

	if len(curriculum.Topics) > r.opts.MaxLessons {
		curriculum.Topics = curriculum.Topics[:r.opts.MaxLessons]
	}

	if r.opts.Verbose && r.opts.Printer != nil {
		r.opts.Printer.PrintCurriculum(&curriculum)
	}

	msg := fmt.Sprintf("%d topics", len(curriculum.Topics))
	if err := r.store.CloseStageRecord(ctx, runID, types.StageCurriculumGeneration, db.StageStatusCompleted, msg); err != nil {
		return nil, err
	}

	return &curriculum, nil
}

// planLessons runs the lesson_planning stage. The whole curriculum is planned
// in one model call and the result is checked per element against the schema.
func (r *Runner) planLessons(ctx context.Context, runID uuid.UUID, curriculum *types.Curriculum) ([]types.LessonPlan, error) {
	if err := r.enterStage(ctx, runID, types.StageLessonPlanning, "Planning lessons"); err != nil {
		return nil, err
	}

	curriculumJSON, err := json.Marshal(curriculum)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal curriculum: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet("curriculum.json", "plan"), map[string]string{
		"Curriculum": string(curriculumJSON),
	})

	raw, err := r.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("lesson planning failed: %w", err)
	}
	raw = llm.CleanJSONBlock(raw)

	var plans []types.LessonPlan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, fmt.Errorf("failed to parse lesson plans: %w", err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("lesson planning produced no plans")
	}

	for _, plan := range plans {
		planJSON, err := json.Marshal(plan)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal lesson plan: %w", err)
		}
		if err := schemas.Validate(schemas.ArtifactLessonPlan, string(planJSON)); err != nil {
			return nil, fmt.Errorf("lesson plan %d did not match schema: %w", plan.LessonNumber, err)
		}
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].LessonNumber < plans[j].LessonNumber })

	if r.opts.Verbose && r.opts.Printer != nil {
		r.opts.Printer.PrintLessonPlans(plans)
	}

	msg := fmt.Sprintf("%d plans", len(plans))
	if err := r.store.CloseStageRecord(ctx, runID, types.StageLessonPlanning, db.StageStatusCompleted, msg); err != nil {
		return nil, err
	}

	return plans, nil
}

// generateContent runs the content_generation stage. Lessons fan out across
// a bounded worker group and each finished lesson is persisted immediately so
// lessons_completed advances while the stage runs.
func (r *Runner) generateContent(ctx context.Context, runID, userID uuid.UUID, subject string, skillLevel types.SkillLevel, docContext string, plans []types.LessonPlan) error {
	if err := r.enterStage(ctx, runID, types.StageContentGeneration, "Generating lesson content"); err != nil {
		return err
	}

	// Drop any lessons from a previous run before writing the new set
	if err := r.store.ReplaceLessons(ctx, userID, subject, nil); err != nil {
		return err
	}

	total := len(plans)
	if err := r.store.UpdatePipelineLessonCounts(ctx, runID, 0, total); err != nil {
		return err
	}

	template := prompts.MustGet("lessons.json", "content")

	var mu sync.Mutex
	completed := 0

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.LessonParallel)

	for _, plan := range plans {
		plan := plan
		g.Go(func() error {
			lesson, err := r.generateLesson(gCtx, template, subject, skillLevel, docContext, plan)
			if err != nil {
				return err
			}
			if err := r.store.SaveLesson(gCtx, userID, subject, lesson); err != nil {
				return err
			}

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()

			if r.opts.Verbose {
				log.Printf("[VERBOSE] Lesson %d/%d generated: %s", done, total, lesson.Title)
			}
			return r.store.UpdatePipelineLessonCounts(gCtx, runID, done, total)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	msg := fmt.Sprintf("%d lessons", total)
	return r.store.CloseStageRecord(ctx, runID, types.StageContentGeneration, db.StageStatusCompleted, msg)
}

// generateLesson produces the markdown content for one planned lesson.
func (r *Runner) generateLesson(ctx context.Context, template, subject string, skillLevel types.SkillLevel, docContext string, plan types.LessonPlan) (*types.Lesson, error) {
	prompt := prompts.Format(template, map[string]string{
		"Subject":      subject,
		"SkillLevel":   string(skillLevel),
		"LessonNumber": strconv.Itoa(plan.LessonNumber),
		"Title":        plan.Title,
		"Objectives":   bulletList(plan.Objectives),
		"Sections":     bulletList(plan.Sections),
		"Context":      docContext,
	})

	content, err := r.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("content generation for lesson %d failed: %w", plan.LessonNumber, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content generation for lesson %d returned empty content", plan.LessonNumber)
	}

	return &types.Lesson{
		LessonNumber: plan.LessonNumber,
		Title:        plan.Title,
		Content:      content,
	}, nil
}

// enterStage advances the run to a stage and opens its audit record.
func (r *Runner) enterStage(ctx context.Context, runID uuid.UUID, stage types.PipelineStage, message string) error {
	if err := r.store.UpdatePipelineStage(ctx, runID, stage, message); err != nil {
		return err
	}
	_, err := r.store.CreateStageRecord(ctx, runID, stage)
	return err
}

// fail marks the run and the current stage failed, then returns the cause.
func (r *Runner) fail(ctx context.Context, runID uuid.UUID, stage types.PipelineStage, cause error) error {
	_ = r.store.CloseStageRecord(ctx, runID, stage, db.StageStatusFailed, cause.Error())
	if err := r.store.FailPipelineRun(ctx, runID, cause.Error()); err != nil {
		log.Printf("failed to mark run %s failed: %v", runID, err)
	}
	return cause
}

// bulletList renders a string slice as markdown bullets for prompt text.
func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
