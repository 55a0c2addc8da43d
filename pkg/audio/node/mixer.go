package node

import (
	"math"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
)

// MixerNode sums a fixed number of externally-supplied mono input slices,
// scaled by a single gain, replicated to every output channel (spec.md
// §4.5.3). Per-channel input routing is out of scope; each input is treated
// as mono and fanned out to every output channel.
type MixerNode struct {
	Base
	inputs []([]float64)
	gain   float64
}

// NewMixerNode constructs a MixerNode with inputCount input slots, all
// initially empty (nil), and the default unity gain.
func NewMixerNode(inputCount int) *MixerNode {
	return &MixerNode{
		inputs: make([]([]float64), inputCount),
		gain:   1.0,
	}
}

// UpdateInput replaces input slot index with slice. The slice must outlive
// the next Process call (spec.md §9's documented lifetime hazard for this
// external-slice wiring style).
func (n *MixerNode) UpdateInput(index int, slice []float64) {
	if index < 0 || index >= len(n.inputs) {
		return
	}
	n.inputs[index] = slice
}

// Process zeros the output, then for every input whose length equals the
// block's frame count, adds input[i]*gain to every output channel at frame
// i. Inputs whose length mismatches are skipped by design — a late or
// unwired input never faults the mixer.
func (n *MixerNode) Process(view buffer.View) {
	view.Fill(0)
	frames := view.FrameCount()
	channels := view.ChannelCount()
	for _, in := range n.inputs {
		if len(in) != frames {
			continue
		}
		for i := 0; i < frames; i++ {
			sample := in[i] * n.gain
			for ch := 0; ch < channels; ch++ {
				view.Channel(ch)[i] += sample
			}
		}
	}
}

// SetParameter accepts "gain" (any finite value).
func (n *MixerNode) SetParameter(name string, value float64) {
	if name == "gain" {
		if math.IsInf(value, 0) || math.IsNaN(value) {
			return
		}
		n.gain = value
	}
}
