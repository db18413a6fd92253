package types

// Subject is one selectable learning subject in the catalog.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// SubjectStatus is the per-user view of a subject: whether it is unlocked by
// an active subscription and how far the user has progressed.
type SubjectStatus struct {
	Subject    string           `json:"subject"`
	Locked     bool             `json:"locked"`
	SkillLevel SkillLevel       `json:"skill_level,omitempty"`
	HasSurvey  bool             `json:"has_survey"`
	HasLessons bool             `json:"has_lessons"`
	Progress   *SubjectProgress `json:"progress,omitempty"`
}
