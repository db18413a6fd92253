package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// -----------------------------------------------------------------------------
// Pipeline Run Methods
// -----------------------------------------------------------------------------

// CreatePipelineRun creates a new pipeline run record and returns its ID
func (db *DB) CreatePipelineRun(ctx context.Context, userID uuid.UUID, subject string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (user_id, subject, status, current_stage)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		userID, subject, types.PipelineStarted, types.StageInitializing,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return id, nil
}

// GetPipelineRun retrieves a pipeline run by ID
func (db *DB) GetPipelineRun(ctx context.Context, runID uuid.UUID) (*PipelineRun, error) {
	var run PipelineRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, subject, status, current_stage, progress_percentage,
		        lessons_completed, total_lessons, COALESCE(message, ''), created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.UserID, &run.Subject, &run.Status, &run.CurrentStage,
		&run.ProgressPercentage, &run.LessonsCompleted, &run.TotalLessons,
		&run.Message, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pipeline run: %w", err)
	}
	return &run, nil
}

// UpdatePipelineStage advances a run to a new stage, refreshing the snapshot
// fields the status endpoint serves
func (db *DB) UpdatePipelineStage(ctx context.Context, runID uuid.UUID, stage types.PipelineStage, message string) error {
	progress := types.ProgressForStage(stage)
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, current_stage = $2, progress_percentage = $3, message = $4
		 WHERE id = $5`,
		types.PipelineInProgress, stage, progress, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pipeline stage: %w", err)
	}
	return nil
}

// UpdatePipelineLessonCounts refreshes the lessons_completed/total_lessons pair
func (db *DB) UpdatePipelineLessonCounts(ctx context.Context, runID uuid.UUID, completed, total int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET lessons_completed = $1, total_lessons = $2 WHERE id = $3`,
		completed, total, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson counts: %w", err)
	}
	return nil
}

// CompletePipelineRun marks a run completed with full progress
func (db *DB) CompletePipelineRun(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, current_stage = $2, progress_percentage = 100,
		     message = $3, completed_at = NOW()
		 WHERE id = $4`,
		types.PipelineCompleted, types.StageCompleted, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete pipeline run: %w", err)
	}
	return nil
}

// FailPipelineRun marks a run failed, preserving the stage it failed in
func (db *DB) FailPipelineRun(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, message = $2, completed_at = NOW()
		 WHERE id = $3`,
		types.PipelineFailed, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to fail pipeline run: %w", err)
	}
	return nil
}

// ListPipelineRuns retrieves recent runs for a user, newest first
func (db *DB) ListPipelineRuns(ctx context.Context, userID uuid.UUID, limit int) ([]PipelineRun, error) {
	if limit == 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, subject, status, current_stage, progress_percentage,
		        lessons_completed, total_lessons, COALESCE(message, ''), created_at, completed_at
		 FROM pipeline_runs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []PipelineRun
	for rows.Next() {
		var run PipelineRun
		if err := rows.Scan(&run.ID, &run.UserID, &run.Subject, &run.Status, &run.CurrentStage,
			&run.ProgressPercentage, &run.LessonsCompleted, &run.TotalLessons,
			&run.Message, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// -----------------------------------------------------------------------------
// Stage Record Methods
// -----------------------------------------------------------------------------

// CreateStageRecord opens an audit row for a stage transition
func (db *DB) CreateStageRecord(ctx context.Context, runID uuid.UUID, stage types.PipelineStage) (*StageRecord, error) {
	var rec StageRecord
	now := time.Now()
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_stages (run_id, stage, status, started_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, run_id, stage, status, COALESCE(message, ''), started_at, completed_at, duration_ms, created_at`,
		runID, stage, StageStatusInProgress, now,
	).Scan(&rec.ID, &rec.RunID, &rec.Stage, &rec.Status, &rec.Message,
		&rec.StartedAt, &rec.CompletedAt, &rec.DurationMs, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage record: %w", err)
	}
	return &rec, nil
}

// CloseStageRecord finalizes a stage's audit row with its outcome
func (db *DB) CloseStageRecord(ctx context.Context, runID uuid.UUID, stage types.PipelineStage, status, message string) error {
	now := time.Now()
	rec, err := db.getStageRecord(ctx, runID, stage)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("stage record not found: %s", stage)
	}

	var durationMs *int
	if rec.StartedAt != nil {
		dur := int(now.Sub(*rec.StartedAt).Milliseconds())
		durationMs = &dur
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE pipeline_stages
		 SET status = $1, message = $2, completed_at = $3, duration_ms = $4
		 WHERE run_id = $5 AND stage = $6`,
		status, message, now, durationMs, runID, stage,
	)
	if err != nil {
		return fmt.Errorf("failed to close stage record: %w", err)
	}
	return nil
}

// getStageRecord reads the single record for a run's stage. The table has
// UNIQUE (run_id, stage), so at most one row matches.
func (db *DB) getStageRecord(ctx context.Context, runID uuid.UUID, stage types.PipelineStage) (*StageRecord, error) {
	var rec StageRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, stage, status, COALESCE(message, ''), started_at, completed_at, duration_ms, created_at
		 FROM pipeline_stages WHERE run_id = $1 AND stage = $2 LIMIT 1`,
		runID, stage,
	).Scan(&rec.ID, &rec.RunID, &rec.Stage, &rec.Status, &rec.Message,
		&rec.StartedAt, &rec.CompletedAt, &rec.DurationMs, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stage record: %w", err)
	}
	return &rec, nil
}

// ListStageRecords retrieves the stage audit trail for a run in creation order
func (db *DB) ListStageRecords(ctx context.Context, runID uuid.UUID) ([]StageRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, stage, status, COALESCE(message, ''), started_at, completed_at, duration_ms, created_at
		 FROM pipeline_stages WHERE run_id = $1 ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage records: %w", err)
	}
	defer rows.Close()

	var recs []StageRecord
	for rows.Next() {
		var rec StageRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Stage, &rec.Status, &rec.Message,
			&rec.StartedAt, &rec.CompletedAt, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stage record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
