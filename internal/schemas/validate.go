// Package schemas validates LLM-generated JSON artifacts against JSON Schemas.
// Schemas are embedded at compile time so validation works regardless of the
// working directory the binary runs from.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Artifact names accepted by Validate.
const (
	ArtifactCurriculum = "curriculum"
	ArtifactLessonPlan = "lesson_plan"
	ArtifactLesson     = "lesson"
	ArtifactSurvey     = "survey"
)

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Artifact string
	Errors   []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Artifact))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks JSON content against the embedded schema for the named artifact.
// Returns nil if the content is valid, a *ValidationError if it violates the
// schema, or another error if the schema or content could not be loaded.
func Validate(artifact, jsonContent string) error {
	data, err := schemaFiles.ReadFile(artifact + ".schema.json")
	if err != nil {
		return fmt.Errorf("unknown artifact %q: %w", artifact, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(data)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate %s artifact: %w", artifact, err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Artifact: artifact,
		Errors:   make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
