// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSurveyResult outputs the graded survey outcome.
func (p *Printer) PrintSurveyResult(result *types.SurveyResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subject:     %s\n", result.Subject))
	sb.WriteString(fmt.Sprintf("Score:       %d/%d\n", result.CorrectAnswers, result.TotalQuestions))
	sb.WriteString(fmt.Sprintf("Skill level: %s\n", result.SkillLevel))

	if len(result.Topics) > 0 {
		sb.WriteString("\nTopics to emphasize:\n")
		count := min(len(result.Topics), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Topics[i]))
		}
		if len(result.Topics) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Topics)-maxItemsToShow))
		}
	}

	p.printBox("SURVEY RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCurriculum outputs the planned lesson topics.
func (p *Printer) PrintCurriculum(curriculum *types.Curriculum) {
	if curriculum == nil || len(curriculum.Topics) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subject: %s (%s)\n", curriculum.Subject, curriculum.SkillLevel))
	sb.WriteString(fmt.Sprintf("Planned lessons: %d\n\n", len(curriculum.Topics)))

	count := min(len(curriculum.Topics), maxItemsToShow)
	for i := 0; i < count; i++ {
		topic := curriculum.Topics[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", topic.LessonNumber, topic.Title))
	}
	if len(curriculum.Topics) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more lessons\n", len(curriculum.Topics)-maxItemsToShow))
	}

	p.printBox("CURRICULUM", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLessonPlans outputs the per-lesson plans with objective counts.
func (p *Printer) PrintLessonPlans(plans []types.LessonPlan) {
	if len(plans) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Planned %d lessons:\n\n", len(plans)))

	count := min(len(plans), maxItemsToShow)
	for i := 0; i < count; i++ {
		plan := plans[i]
		title := plan.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", plan.LessonNumber, title))
		sb.WriteString(fmt.Sprintf("    Objectives: %d\n", len(plan.Objectives)))
	}
	if len(plans) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more plans", len(plans)-maxItemsToShow))
	}

	p.printBox("LESSON PLANS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the final outcome of a generation run.
func (p *Printer) PrintRunSummary(subject string, status types.PipelineStatus, elapsed time.Duration) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subject:  %s\n", subject))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status.Status))
	sb.WriteString(fmt.Sprintf("Progress: %d%%\n", status.Progress()))
	if status.LessonsCompleted != nil && status.TotalLessons != nil {
		sb.WriteString(fmt.Sprintf("Lessons:  %d/%d\n", *status.LessonsCompleted, *status.TotalLessons))
	}
	sb.WriteString(fmt.Sprintf("Elapsed:  %s", elapsed.Round(time.Second)))

	p.printBox("GENERATION RUN", sb.String())
}
