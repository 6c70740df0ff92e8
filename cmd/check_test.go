package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vidcheck.dev/pkg/vidcheck/internal/adapter"
	domainmocks "vidcheck.dev/pkg/vidcheck/internal/domain/mocks"
)

func TestCheckCmd_PrintsDecoder(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.On("Check", mock.Anything).Return(adapter.DecoderInfo{Path: "/usr/bin/ffmpeg", Version: "ffmpeg version 6.1"}, nil).Once()

	output, err := runCommand(t, mockWorkflow, newCheckCmd(), "check")

	require.NoError(t, err)
	assert.Contains(t, output, "decoder\t /usr/bin/ffmpeg")
	assert.Contains(t, output, "version\t ffmpeg version 6.1")
}

func TestCheckCmd_DecoderMissing(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.On("Check", mock.Anything).Return(adapter.DecoderInfo{}, adapter.ErrDecoderNotFound).Once()

	output, err := runCommand(t, mockWorkflow, newCheckCmd(), "check")

	require.ErrorIs(t, err, adapter.ErrDecoderNotFound)
	assert.NotContains(t, output, "decoder\t")
}
