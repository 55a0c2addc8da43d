package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
)

func TestMixerSumsInputsAcrossChannels(t *testing.T) {
	n := NewMixerNode(2)
	n.UpdateInput(0, []float64{1, 2, 3})
	n.UpdateInput(1, []float64{10, 20, 30})

	left := make([]float64, 3)
	right := make([]float64, 3)
	view := buffer.NewView([][]float64{left, right}, 3)
	n.Process(view)

	assert.Equal(t, []float64{11, 22, 33}, left)
	assert.Equal(t, []float64{11, 22, 33}, right)
}

func TestMixerAppliesGain(t *testing.T) {
	n := NewMixerNode(1)
	n.UpdateInput(0, []float64{1, 2, 3})
	n.SetParameter("gain", 0.5)

	out := make([]float64, 3)
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{0.5, 1, 1.5}, out)
}

func TestMixerSkipsLengthMismatchedInput(t *testing.T) {
	n := NewMixerNode(2)
	n.UpdateInput(0, []float64{1, 2, 3})
	n.UpdateInput(1, []float64{99, 99}) // wrong length for this block

	out := make([]float64, 3)
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestMixerUpdateInputIgnoresOutOfRangeIndex(t *testing.T) {
	n := NewMixerNode(1)
	n.UpdateInput(5, []float64{1, 2, 3}) // no panic, silently ignored

	out := make([]float64, 3)
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{0, 0, 0}, out)
}
