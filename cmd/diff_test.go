package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vidcheck.dev/pkg/vidcheck/internal/domain"
	domainmocks "vidcheck.dev/pkg/vidcheck/internal/domain/mocks"
)

func TestDiffCmd(t *testing.T) {
	args := domain.DiffArgs{Old: "monday.yaml", New: "tuesday.yaml"}

	t.Run("prints the diff", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		mockWorkflow.On("Diff", mock.Anything, args).Return("--- monday.yaml\n+++ tuesday.yaml\n-corrupt     /videos/a.mp4\n", nil).Once()

		output, err := runCommand(t, mockWorkflow, newDiffCmd(), "diff", "monday.yaml", "tuesday.yaml")

		require.NoError(t, err)
		assert.Contains(t, output, "-corrupt     /videos/a.mp4")
	})

	t.Run("identical reports", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		mockWorkflow.On("Diff", mock.Anything, args).Return("", nil).Once()

		output, err := runCommand(t, mockWorkflow, newDiffCmd(), "diff", "monday.yaml", "tuesday.yaml")

		require.NoError(t, err)
		assert.Equal(t, "reports match\n", output)
	})

	t.Run("load error", func(t *testing.T) {
		mockWorkflow := domainmocks.NewMockWorkflow(t)
		mockWorkflow.On("Diff", mock.Anything, args).Return("", assert.AnError).Once()

		_, err := runCommand(t, mockWorkflow, newDiffCmd(), "diff", "monday.yaml", "tuesday.yaml")

		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("needs two reports", func(t *testing.T) {
		_, err := runCommand(t, domainmocks.NewMockWorkflow(t), newDiffCmd(), "diff", "monday.yaml")

		require.Error(t, err)
	})
}
