// Package surveys generates knowledge assessment surveys and grades
// submitted answers into a skill level for the subject.
package surveys

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/llm"
	"github.com/MikeHibbert/MindCoach-sub001/internal/prompts"
	"github.com/MikeHibbert/MindCoach-sub001/internal/schemas"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

// QuestionCount is the number of questions generated per survey.
const QuestionCount = 8

// Grading thresholds as fractions of correct answers.
const (
	advancedThreshold     = 0.75
	intermediateThreshold = 0.40
)

// Store is the persistence surface the service needs.
type Store interface {
	SaveSurvey(ctx context.Context, userID uuid.UUID, subject string, survey *types.Survey) error
	GetSurvey(ctx context.Context, userID uuid.UUID, subject string) (*types.Survey, error)
	SaveSurveyResult(ctx context.Context, userID uuid.UUID, result *types.SurveyResult) error
	GetSurveyResult(ctx context.Context, userID uuid.UUID, subject string) (*types.SurveyResult, error)
	DeleteSurvey(ctx context.Context, userID uuid.UUID, subject string) error
}

// Service generates and grades subject surveys.
type Service struct {
	store  Store
	client llm.Client
}

// NewService creates a survey service.
func NewService(store Store, client llm.Client) *Service {
	return &Service{store: store, client: client}
}

// Generate creates a fresh survey for the user and subject and persists it.
// Any previous survey for the pair is replaced.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, subject string) (*types.Survey, error) {
	prompt := prompts.Format(prompts.MustGet("survey.json", "generate"), map[string]string{
		"Subject":       subject,
		"QuestionCount": strconv.Itoa(QuestionCount),
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("failed to generate survey: %w", err)
	}
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.ArtifactSurvey, raw); err != nil {
		return nil, fmt.Errorf("survey did not match schema: %w", err)
	}

	var survey types.Survey
	if err := json.Unmarshal([]byte(raw), &survey); err != nil {
		return nil, fmt.Errorf("failed to parse survey: %w", err)
	}
	survey.Subject = subject

	if err := s.store.SaveSurvey(ctx, userID, subject, &survey); err != nil {
		return nil, err
	}

	return &survey, nil
}

// Get returns the stored survey for the user and subject, or nil if none exists.
// Correct answers are blanked so the client never sees them.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, subject string) (*types.Survey, error) {
	survey, err := s.store.GetSurvey(ctx, userID, subject)
	if err != nil || survey == nil {
		return survey, err
	}

	for i := range survey.Questions {
		survey.Questions[i].CorrectAnswer = -1
	}
	return survey, nil
}

// Submit grades the answers against the stored survey, persists the result
// and returns it. Unanswered questions count as incorrect.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, subject string, answers []types.SurveyAnswer) (*types.SurveyResult, error) {
	survey, err := s.store.GetSurvey(ctx, userID, subject)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, fmt.Errorf("no survey found for subject %s", subject)
	}

	result := Grade(survey, answers)

	if err := s.store.SaveSurveyResult(ctx, userID, result); err != nil {
		return nil, err
	}

	return result, nil
}

// Result returns the stored survey result, or nil if the user has not
// completed the survey for this subject.
func (s *Service) Result(ctx context.Context, userID uuid.UUID, subject string) (*types.SurveyResult, error) {
	return s.store.GetSurveyResult(ctx, userID, subject)
}

// Grade scores answers against a survey deterministically. The skill level
// is advanced at 75% correct or better, intermediate at 40% or better,
// beginner otherwise. Topics of missed questions are collected so generation
// can emphasize them.
func Grade(survey *types.Survey, answers []types.SurveyAnswer) *types.SurveyResult {
	answered := make(map[int]int, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = a.Answer
	}

	correct := 0
	var missedTopics []string
	seenTopics := make(map[string]bool)
	for _, q := range survey.Questions {
		if choice, ok := answered[q.ID]; ok && choice == q.CorrectAnswer {
			correct++
			continue
		}
		if q.Topic != "" && !seenTopics[q.Topic] {
			seenTopics[q.Topic] = true
			missedTopics = append(missedTopics, q.Topic)
		}
	}

	total := len(survey.Questions)
	level := types.LevelBeginner
	if total > 0 {
		ratio := float64(correct) / float64(total)
		switch {
		case ratio >= advancedThreshold:
			level = types.LevelAdvanced
		case ratio >= intermediateThreshold:
			level = types.LevelIntermediate
		}
	}

	return &types.SurveyResult{
		Subject:        survey.Subject,
		SkillLevel:     level,
		CorrectAnswers: correct,
		TotalQuestions: total,
		Topics:         missedTopics,
	}
}
