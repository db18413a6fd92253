package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// ReplaceLessons atomically replaces the lesson set for a (user, subject) pair.
// Called at the end of a successful content generation run.
func (db *DB) ReplaceLessons(ctx context.Context, userID uuid.UUID, subject string, lessons []types.Lesson) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM lessons WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	); err != nil {
		return fmt.Errorf("failed to clear lessons: %w", err)
	}

	for _, lesson := range lessons {
		if _, err := tx.Exec(ctx,
			`INSERT INTO lessons (user_id, subject, lesson_number, title, content)
			 VALUES ($1, $2, $3, $4, $5)`,
			userID, subject, lesson.LessonNumber, lesson.Title, lesson.Content,
		); err != nil {
			return fmt.Errorf("failed to insert lesson %d: %w", lesson.LessonNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit lessons: %w", err)
	}
	return nil
}

// SaveLesson stores a single generated lesson, replacing any previous one at
// the same number. Used by the pipeline to land lessons incrementally.
func (db *DB) SaveLesson(ctx context.Context, userID uuid.UUID, subject string, lesson *types.Lesson) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO lessons (user_id, subject, lesson_number, title, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, subject, lesson_number)
		 DO UPDATE SET title = $4, content = $5, created_at = NOW()`,
		userID, subject, lesson.LessonNumber, lesson.Title, lesson.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to save lesson %d: %w", lesson.LessonNumber, err)
	}
	return nil
}

// GetLesson retrieves one lesson with its completion flag
func (db *DB) GetLesson(ctx context.Context, userID uuid.UUID, subject string, lessonNumber int) (*types.Lesson, error) {
	var lesson types.Lesson
	err := db.pool.QueryRow(ctx,
		`SELECT l.lesson_number, l.title, l.content,
		        EXISTS(SELECT 1 FROM lesson_progress p
		               WHERE p.user_id = l.user_id AND p.subject = l.subject
		                 AND p.lesson_number = l.lesson_number) AS completed
		 FROM lessons l
		 WHERE l.user_id = $1 AND l.subject = $2 AND l.lesson_number = $3`,
		userID, subject, lessonNumber,
	).Scan(&lesson.LessonNumber, &lesson.Title, &lesson.Content, &lesson.Completed)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

// ListLessons retrieves lesson summaries for a (user, subject) pair in order
func (db *DB) ListLessons(ctx context.Context, userID uuid.UUID, subject string) ([]types.LessonSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT l.lesson_number, l.title,
		        EXISTS(SELECT 1 FROM lesson_progress p
		               WHERE p.user_id = l.user_id AND p.subject = l.subject
		                 AND p.lesson_number = l.lesson_number) AS completed
		 FROM lessons l
		 WHERE l.user_id = $1 AND l.subject = $2
		 ORDER BY l.lesson_number`,
		userID, subject,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []types.LessonSummary
	for rows.Next() {
		var l types.LessonSummary
		if err := rows.Scan(&l.LessonNumber, &l.Title, &l.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// MarkLessonComplete records completion of one lesson. Idempotent.
func (db *DB) MarkLessonComplete(ctx context.Context, userID uuid.UUID, subject string, lessonNumber int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO lesson_progress (user_id, subject, lesson_number)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, subject, lesson_number) DO NOTHING`,
		userID, subject, lessonNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to mark lesson complete: %w", err)
	}
	return nil
}

// GetProgress summarizes a user's completion state for one subject
func (db *DB) GetProgress(ctx context.Context, userID uuid.UUID, subject string) (*types.SubjectProgress, error) {
	var total, completed int
	err := db.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM lessons WHERE user_id = $1 AND subject = $2),
		   (SELECT COUNT(*) FROM lesson_progress WHERE user_id = $1 AND subject = $2)`,
		userID, subject,
	).Scan(&total, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress := &types.SubjectProgress{
		Subject:          subject,
		LessonsCompleted: completed,
		TotalLessons:     total,
	}
	if total > 0 {
		progress.PercentComplete = completed * 100 / total
	}
	return progress, nil
}
