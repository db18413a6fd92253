package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikeHibbert/MindCoach-sub001/internal/client"
)

func TestDescribeStartError(t *testing.T) {
	watchSubject = "python"

	t.Run("subscription required", func(t *testing.T) {
		err := describeStartError(&client.APIError{
			Type:    client.ErrTypeSubscriptionRequired,
			Message: "active subscription required for subject: python",
		})
		assert.Contains(t, err.Error(), "no active subscription for python")
	})

	t.Run("prerequisite missing", func(t *testing.T) {
		err := describeStartError(&client.APIError{
			Type:    client.ErrTypePrerequisiteMissing,
			Message: "prerequisite missing for subject python: survey results",
		})
		assert.Contains(t, err.Error(), "complete the python survey")
	})

	t.Run("generic api error passes through", func(t *testing.T) {
		apiErr := &client.APIError{Type: client.ErrTypeAPI, Message: "boom"}
		assert.Equal(t, apiErr, describeStartError(apiErr))
	})

	t.Run("transport error passes through", func(t *testing.T) {
		err := assert.AnError
		assert.Equal(t, err, describeStartError(err))
	})
}
