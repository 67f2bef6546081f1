package demo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketpilot/internal/extraction"
	"pocketpilot/internal/extractor/demo"
	"pocketpilot/internal/port"
)

func TestExtractor_DeterministicAndValid(t *testing.T) {
	x := demo.NewExtractor(nil)
	input := port.ExtractInput{FileBytes: []byte("same receipt"), ContentType: "image/jpeg"}

	first, err := x.Extract(context.Background(), input)
	require.NoError(t, err)
	second, err := x.Extract(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "demo", first.Provider)

	p, err := extraction.NewPipeline(extraction.DefaultRules())
	require.NoError(t, err)
	receipt, err := p.Run(first.Source)
	require.NoError(t, err)

	assert.True(t, receipt.IsValid())
	assert.False(t, receipt.DateDefaulted)
	assert.InDelta(t, 0.9, receipt.Confidence, 1e-9)
}

func TestExtractor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := demo.NewExtractor(nil).Extract(ctx, port.ExtractInput{})
	assert.ErrorIs(t, err, context.Canceled)
}
