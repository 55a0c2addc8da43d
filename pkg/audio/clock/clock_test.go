package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(0, 128)
	assert.Error(t, err)

	_, err = New(48000, 0)
	assert.Error(t, err)

	clk, err := New(48000, 128)
	require.NoError(t, err)
	assert.Equal(t, float64(48000), clk.SampleRate())
	assert.Equal(t, uint32(128), clk.FramesPerBlock())
	assert.Equal(t, uint64(0), clk.FrameTime())
}

func TestAdvanceUsesFramesPerBlock(t *testing.T) {
	clk, err := New(48000, 64)
	require.NoError(t, err)

	clk.Advance()
	assert.Equal(t, uint64(64), clk.FrameTime())

	clk.Advance()
	assert.Equal(t, uint64(128), clk.FrameTime())
}

func TestAdvanceByArbitraryFrames(t *testing.T) {
	clk, err := New(48000, 64)
	require.NoError(t, err)

	clk.AdvanceBy(100)
	assert.Equal(t, uint64(100), clk.FrameTime())

	clk.AdvanceBy(1)
	assert.Equal(t, uint64(101), clk.FrameTime())
}

func TestSetFramesPerBlockValidates(t *testing.T) {
	clk, err := New(48000, 64)
	require.NoError(t, err)

	assert.Error(t, clk.SetFramesPerBlock(0))

	require.NoError(t, clk.SetFramesPerBlock(256))
	assert.Equal(t, uint32(256), clk.FramesPerBlock())
	clk.Advance()
	assert.Equal(t, uint64(256), clk.FrameTime())
}
