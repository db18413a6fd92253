package types

// SkillLevel is the graded proficiency for a user in one subject.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// SurveyQuestion is one multiple-choice question in a subject survey.
type SurveyQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic,omitempty"`
}

// Survey is the generated question set for a (user, subject) pair.
type Survey struct {
	Subject   string           `json:"subject"`
	Questions []SurveyQuestion `json:"questions"`
}

// SurveyAnswer pairs a question ID with the option index the user chose.
type SurveyAnswer struct {
	QuestionID int `json:"question_id"`
	Answer     int `json:"answer"`
}

// SubmitAnswersRequest is the request body for survey answer submission.
type SubmitAnswersRequest struct {
	Answers []SurveyAnswer `json:"answers" validate:"required,min=1,dive"`
}

// Validate validates the SubmitAnswersRequest using the validator.
func (r *SubmitAnswersRequest) Validate() error {
	return validate.Struct(r)
}

// SurveyResult is the graded outcome of a submitted survey.
type SurveyResult struct {
	Subject        string     `json:"subject"`
	SkillLevel     SkillLevel `json:"skill_level"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalQuestions int        `json:"total_questions"`
	Topics         []string   `json:"topics,omitempty"`
}
