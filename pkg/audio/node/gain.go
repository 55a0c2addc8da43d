package node

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/wavecore/rtengine/pkg/audio/buffer"
)

// GainNode multiplies every sample, across all channels, by a single gain
// factor (spec.md §4.5.1).
type GainNode struct {
	Base
	gain float64
}

// NewGainNode constructs a GainNode with the default unity gain.
func NewGainNode() *GainNode {
	return &GainNode{gain: 1.0}
}

// Process scales view in place by the current gain, using algo-vecmath's
// scalar block multiply for the same elementwise loop the teacher's
// pkg/dsp/gain.ApplyBuffer performs by hand.
func (n *GainNode) Process(view buffer.View) {
	for ch := 0; ch < view.ChannelCount(); ch++ {
		vecmath.ScaleBlockInPlace(view.Channel(ch), n.gain)
	}
}

// SetParameter accepts "gain" (any finite value); non-finite values and
// unknown names are silently ignored.
func (n *GainNode) SetParameter(name string, value float64) {
	if name == "gain" {
		if math.IsInf(value, 0) || math.IsNaN(value) {
			return
		}
		n.gain = value
	}
}

// Gain returns the current gain factor, for tests and diagnostics.
func (n *GainNode) Gain() float64 { return n.gain }
