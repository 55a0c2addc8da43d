package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
	"github.com/wavecore/rtengine/pkg/audio/clip"
)

func registerClip(t *testing.T, samples ...float64) *clip.Buffer {
	t.Helper()
	r := clip.NewRegistry()
	buf, err := r.Register("c", 48000, [][]float64{samples})
	require.NoError(t, err)
	return buf
}

func processBlock(n *ClipPlayerNode, frames int) []float64 {
	out := make([]float64, frames)
	view := buffer.NewView([][]float64{out}, frames)
	n.Process(view)
	return out
}

func TestClipPlayerNoClipOutputsSilence(t *testing.T) {
	n := NewClipPlayerNode()
	out := processBlock(n, 4)
	assert.Equal(t, []float64{0, 0, 0, 0}, out)
	assert.Equal(t, uint64(4), n.ProcessedFrames())
}

func TestClipPlayerSetClipRetainsAndReleases(t *testing.T) {
	buf := registerClip(t, 1, 1)
	n := NewClipPlayerNode()

	n.SetClip(buf)
	assert.Equal(t, int32(2), buf.RefCount(), "SetClip retains its own reference")

	other := registerClip(t, 2, 2)
	n.SetClip(other)
	assert.Equal(t, int32(1), buf.RefCount(), "replacing the clip releases the previous one")
}

// Scenario 3 (spec.md §8): sample_rate 48000, clip=[0..7], start=4, end=12,
// gain=1, block size 4.
func TestClipPlayerSchedulingScenario(t *testing.T) {
	buf := registerClip(t, 0, 1, 2, 3, 4, 5, 6, 7)
	n := NewClipPlayerNode()
	n.Prepare(48000)
	n.SetClip(buf)
	n.SetParameter("startframe", 4)
	n.SetParameter("endframe", 12)
	n.SetParameter("gain", 1)

	assert.Equal(t, []float64{0, 0, 0, 0}, processBlock(n, 4))
	assert.Equal(t, []float64{0, 1, 2, 3}, processBlock(n, 4))
	assert.Equal(t, []float64{4, 5, 6, 7}, processBlock(n, 4))
	assert.Equal(t, []float64{0, 0, 0, 0}, processBlock(n, 4))
}

// Scenario 4 (spec.md §8): sample_rate 44100, clip=[1,1,1,1], start=0,
// end=4, fade_in=fade_out=2, gain=0.5, single block of 4.
func TestClipPlayerFadeScenario(t *testing.T) {
	buf := registerClip(t, 1, 1, 1, 1)
	n := NewClipPlayerNode()
	n.Prepare(44100)
	n.SetClip(buf)
	n.SetParameter("startframe", 0)
	n.SetParameter("endframe", 4)
	n.SetParameter("fadeinframes", 2)
	n.SetParameter("fadeoutframes", 2)
	n.SetParameter("gain", 0.5)

	out := processBlock(n, 4)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.5, 0.25}, out, 1e-9)
}

// Scenario 5 (spec.md §8): sample_rate 48000, clip=[0,1,2,3], start=4,
// end=8; a Reset between renders replays from the same window.
func TestClipPlayerResetScenario(t *testing.T) {
	buf := registerClip(t, 0, 1, 2, 3)
	n := NewClipPlayerNode()
	n.Prepare(48000)
	n.SetClip(buf)
	n.SetParameter("startframe", 4)
	n.SetParameter("endframe", 8)

	assert.Equal(t, []float64{0, 0, 0, 0}, processBlock(n, 4))
	assert.Equal(t, []float64{0, 1, 2, 3}, processBlock(n, 4))

	n.Reset()

	assert.Equal(t, []float64{0, 0, 0, 0}, processBlock(n, 4))
	assert.Equal(t, []float64{0, 1, 2, 3}, processBlock(n, 4))
}

func TestClipPlayerReplicatesMonoSourceAcrossOutputChannels(t *testing.T) {
	buf := registerClip(t, 1, 2, 3, 4)
	n := NewClipPlayerNode()
	n.SetClip(buf)
	n.SetParameter("startframe", 0)
	n.SetParameter("endframe", 4)

	left := make([]float64, 4)
	right := make([]float64, 4)
	view := buffer.NewView([][]float64{left, right}, 4)
	n.Process(view)

	assert.Equal(t, left, right)
}

func TestClipPlayerIgnoresSamplesOutsideDeclaredWindow(t *testing.T) {
	buf := registerClip(t, 9, 9, 9, 9, 9, 9)
	n := NewClipPlayerNode()
	n.SetClip(buf)
	n.SetParameter("startframe", 2)
	n.SetParameter("endframe", 4)

	out := processBlock(n, 6)
	assert.Equal(t, []float64{0, 0, 9, 9, 0, 0}, out)
}

func TestSanitizeFrameValueRoundsHalfUpAndClampsNonPositive(t *testing.T) {
	assert.Equal(t, uint64(3), sanitizeFrameValue(2.5))
	assert.Equal(t, uint64(0), sanitizeFrameValue(-1))
	assert.Equal(t, uint64(0), sanitizeFrameValue(0))
	assert.Equal(t, uint64(4), sanitizeFrameValue(3.5))
}

func TestSanitizeCountValueMatchesSanitizeFrameValue(t *testing.T) {
	assert.Equal(t, uint64(2), sanitizeCountValue(1.5))
	assert.Equal(t, uint64(0), sanitizeCountValue(-5))
}
