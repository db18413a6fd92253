package types

// Curriculum is the ordered lesson topic list produced by the
// curriculum_generation stage.
type Curriculum struct {
	Subject    string            `json:"subject"`
	SkillLevel SkillLevel        `json:"skill_level"`
	Topics     []CurriculumTopic `json:"topics"`
}

// CurriculumTopic is one planned lesson slot in the curriculum.
type CurriculumTopic struct {
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
}

// LessonPlan is the per-lesson structure produced by the lesson_planning stage.
type LessonPlan struct {
	LessonNumber int      `json:"lesson_number"`
	Title        string   `json:"title"`
	Objectives   []string `json:"objectives"`
	Sections     []string `json:"sections,omitempty"`
}

// Lesson is one generated lesson with its markdown content.
type Lesson struct {
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Completed    bool   `json:"completed"`
}

// LessonSummary is the listing view of a lesson, without content.
type LessonSummary struct {
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	Completed    bool   `json:"completed"`
}

// SubjectProgress summarizes a user's completion state for one subject.
type SubjectProgress struct {
	Subject          string `json:"subject"`
	LessonsCompleted int    `json:"lessons_completed"`
	TotalLessons     int    `json:"total_lessons"`
	PercentComplete  int    `json:"percent_complete"`
}
