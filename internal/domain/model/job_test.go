package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	t.Run("valid and terminal", func(t *testing.T) {
		cases := []struct {
			status   JobStatus
			terminal bool
		}{
			{JobStatusQueued, false},
			{JobStatusProcessing, false},
			{JobStatusCompleted, true},
			{JobStatusFailed, true},
		}
		for _, tc := range cases {
			assert.True(t, tc.status.Valid(), tc.status)
			assert.Equal(t, tc.terminal, tc.status.Terminal(), tc.status)
		}
		assert.False(t, JobStatus("running").Valid())
	})

	t.Run("unmarshal text", func(t *testing.T) {
		var s JobStatus
		require.NoError(t, s.UnmarshalText([]byte(" Completed ")))
		assert.Equal(t, JobStatusCompleted, s)
		assert.Error(t, s.UnmarshalText([]byte("pending")))
	})
}

func TestSlideRecordQuery(t *testing.T) {
	assert.Equal(t, "Agenda", SlideRecord{Title: "Agenda"}.Query())
	assert.Equal(t, "meeting", SlideRecord{Title: "Agenda", ImageQuery: "meeting"}.Query())
	assert.True(t, LayoutTwoColumn.Valid())
	assert.False(t, Layout("grid").Valid())
	assert.False(t, SlideType("").Valid())
}
