package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableIsSorted(t *testing.T) {
	files, err := Available()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_presentations.sql", files[0])
	assert.IsIncreasing(t, files)
}
