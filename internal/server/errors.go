// Package server provides the HTTP REST API for the learning platform.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Error codes carried in the error envelope.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodePrerequisiteMissing  = "PREREQUISITE_MISSING"
	CodeInternalError        = "INTERNAL_ERROR"
)

// ErrorBody is the inner object of the error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the wire format for all API errors.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrSubscriptionRequired indicates the user has no active subscription
// for the subject.
type ErrSubscriptionRequired struct {
	Subject string
}

func (e *ErrSubscriptionRequired) Error() string {
	return fmt.Sprintf("active subscription required for subject: %s", e.Subject)
}

// ErrPrerequisiteMissing indicates a required earlier step has not been done,
// such as starting generation before completing the survey.
type ErrPrerequisiteMissing struct {
	Subject string
	Missing string
}

func (e *ErrPrerequisiteMissing) Error() string {
	return fmt.Sprintf("prerequisite missing for subject %s: %s", e.Subject, e.Missing)
}

// HTTPStatus returns the HTTP status code for an error.
// Subscription gate failures map to 402 Payment Required.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials, *ErrPasswordMismatch:
		return http.StatusUnauthorized
	case *ErrUserNotFound:
		return http.StatusNotFound
	case *ErrSubscriptionRequired:
		return http.StatusPaymentRequired
	case *ErrPrerequisiteMissing:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the envelope code for an error.
func ErrorCode(err error) string {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return CodeEmailExists
	case *ErrInvalidCredentials, *ErrPasswordMismatch:
		return CodeUnauthorized
	case *ErrUserNotFound:
		return CodeNotFound
	case *ErrSubscriptionRequired:
		return CodeSubscriptionRequired
	case *ErrPrerequisiteMissing:
		return CodePrerequisiteMissing
	default:
		return CodeInternalError
	}
}
