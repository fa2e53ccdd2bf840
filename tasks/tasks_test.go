package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus(t *testing.T) {
	for status, expected := range map[TaskStatus][2]bool{
		TaskStatusSubmitted:        {false, true},
		TaskStatusStarted:          {false, true},
		TaskStatusProcessing:       {false, true},
		TaskStatusFailed:           {false, false},
		TaskStatusCompletedSuccess: {true, false},
		TaskStatusCompletedFailure: {true, false},
		TaskStatusCanceled:         {true, false},
	} {
		assert.Equal(t, expected[0], status.Complete(), string(status))
		assert.Equal(t, expected[1], status.Submitted(), string(status))
	}
}

func TestCachedPropertiesKey(t *testing.T) {
	assert.Equal(t, "doc-1-cached-properties", cachedPropertiesKey("doc-1"))
}
