package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// SaveSurvey stores (or replaces) the generated survey for a (user, subject) pair
func (db *DB) SaveSurvey(ctx context.Context, userID uuid.UUID, subject string, survey *types.Survey) error {
	questionsJSON, err := json.Marshal(survey.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal survey questions: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO surveys (user_id, subject, questions)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, subject) DO UPDATE SET questions = $3, created_at = NOW()`,
		userID, subject, questionsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save survey: %w", err)
	}
	return nil
}

// GetSurvey retrieves the stored survey for a (user, subject) pair
func (db *DB) GetSurvey(ctx context.Context, userID uuid.UUID, subject string) (*types.Survey, error) {
	var questionsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT questions FROM surveys WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	).Scan(&questionsJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	survey := &types.Survey{Subject: subject}
	if err := json.Unmarshal(questionsJSON, &survey.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal survey questions: %w", err)
	}
	return survey, nil
}

// SaveSurveyResult stores (or replaces) the graded result for a (user, subject) pair
func (db *DB) SaveSurveyResult(ctx context.Context, userID uuid.UUID, result *types.SurveyResult) error {
	topicsJSON, err := json.Marshal(result.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal result topics: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO survey_results (user_id, subject, skill_level, correct_answers, total_questions, topics)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, subject) DO UPDATE
		 SET skill_level = $3, correct_answers = $4, total_questions = $5, topics = $6, created_at = NOW()`,
		userID, result.Subject, result.SkillLevel, result.CorrectAnswers, result.TotalQuestions, topicsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save survey result: %w", err)
	}
	return nil
}

// GetSurveyResult retrieves the graded result for a (user, subject) pair
func (db *DB) GetSurveyResult(ctx context.Context, userID uuid.UUID, subject string) (*types.SurveyResult, error) {
	var result types.SurveyResult
	var topicsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT subject, skill_level, correct_answers, total_questions, topics
		 FROM survey_results WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	).Scan(&result.Subject, &result.SkillLevel, &result.CorrectAnswers, &result.TotalQuestions, &topicsJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get survey result: %w", err)
	}

	if topicsJSON != nil {
		_ = json.Unmarshal(topicsJSON, &result.Topics)
	}
	return &result, nil
}

// DeleteSurvey removes the survey and its result for a (user, subject) pair
func (db *DB) DeleteSurvey(ctx context.Context, userID uuid.UUID, subject string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM surveys WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	)
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`DELETE FROM survey_results WHERE user_id = $1 AND subject = $2`,
		userID, subject,
	)
	if err != nil {
		return fmt.Errorf("failed to delete survey result: %w", err)
	}
	return nil
}
