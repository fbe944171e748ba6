package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequest_ToOptions(t *testing.T) {
	t.Run("empty request takes defaults", func(t *testing.T) {
		opts := RunRequest{}.ToOptions()
		assert.Zero(t, opts.BatchSize)
		assert.Nil(t, opts.CompanyID)
		assert.False(t, opts.DryRun)
	})

	t.Run("company scope and dry run", func(t *testing.T) {
		id := uuid.New()
		opts := RunRequest{BatchSize: 50, CompanyID: id.String(), DryRun: true}.ToOptions()
		assert.Equal(t, 50, opts.BatchSize)
		require.NotNil(t, opts.CompanyID)
		assert.Equal(t, id, *opts.CompanyID)
		assert.True(t, opts.DryRun)
	})
}
