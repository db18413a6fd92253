package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrEmailAlreadyExists(t *testing.T) {
	err := &ErrEmailAlreadyExists{Email: "test@example.com"}
	assert.Equal(t, "email already registered: test@example.com", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.Equal(t, CodeEmailExists, ErrorCode(err))
}

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid email or password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))
}

func TestErrUserNotFound(t *testing.T) {
	userID := uuid.New()
	err := &ErrUserNotFound{UserID: userID}
	assert.Equal(t, "user not found: "+userID.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestErrPasswordMismatch(t *testing.T) {
	err := &ErrPasswordMismatch{}
	assert.Equal(t, "current password is incorrect", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrSubscriptionRequired(t *testing.T) {
	err := &ErrSubscriptionRequired{Subject: "python"}
	assert.Equal(t, "active subscription required for subject: python", err.Error())
	assert.Equal(t, http.StatusPaymentRequired, HTTPStatus(err))
	assert.Equal(t, CodeSubscriptionRequired, ErrorCode(err))
}

func TestErrPrerequisiteMissing(t *testing.T) {
	err := &ErrPrerequisiteMissing{Subject: "python", Missing: "survey results"}
	assert.Equal(t, "prerequisite missing for subject python: survey results", err.Error())
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.Equal(t, CodePrerequisiteMissing, ErrorCode(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrEmailAlreadyExists",
			err:      &ErrEmailAlreadyExists{Email: "test@example.com"},
			expected: http.StatusConflict,
		},
		{
			name:     "ErrInvalidCredentials",
			err:      &ErrInvalidCredentials{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrPasswordMismatch",
			err:      &ErrPasswordMismatch{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrUserNotFound",
			err:      &ErrUserNotFound{UserID: uuid.New()},
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrSubscriptionRequired",
			err:      &ErrSubscriptionRequired{Subject: "python"},
			expected: http.StatusPaymentRequired,
		},
		{
			name:     "ErrPrerequisiteMissing",
			err:      &ErrPrerequisiteMissing{Subject: "python", Missing: "survey results"},
			expected: http.StatusConflict,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorCode_Default(t *testing.T) {
	assert.Equal(t, CodeInternalError, ErrorCode(assert.AnError))
	assert.Equal(t, CodeInternalError, ErrorCode(nil))
}
