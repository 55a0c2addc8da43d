package node

import (
	"math"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
)

const twoPi = 2.0 * math.Pi

// SineOscillatorNode emits a sine wave, replicated to every channel, whose
// phase advances continuously across process calls (spec.md §4.5.2).
type SineOscillatorNode struct {
	Base
	phase     float64
	frequency float64
}

// NewSineOscillatorNode constructs a SineOscillatorNode at the default 440Hz.
func NewSineOscillatorNode() *SineOscillatorNode {
	return &SineOscillatorNode{frequency: 440.0}
}

// Prepare resets phase to 0 in addition to recording the sample rate.
func (n *SineOscillatorNode) Prepare(sampleRate float64) {
	n.Base.Prepare(sampleRate)
	n.phase = 0.0
}

// Process fills every channel with sin(phase) and advances phase by
// 2*pi*frequency/sampleRate per frame, subtracting 2*pi once whenever phase
// exceeds 2*pi (so phase may sit at exactly 2*pi).
func (n *SineOscillatorNode) Process(view buffer.View) {
	rate := n.SampleRate()
	phaseDelta := twoPi * n.frequency / rate
	frames := view.FrameCount()
	channels := view.ChannelCount()
	for i := 0; i < frames; i++ {
		value := math.Sin(n.phase)
		n.phase += phaseDelta
		if n.phase > twoPi {
			n.phase -= twoPi
		}
		for ch := 0; ch < channels; ch++ {
			view.Channel(ch)[i] = value
		}
	}
}

// SetParameter accepts "frequency" in Hz.
func (n *SineOscillatorNode) SetParameter(name string, value float64) {
	if name == "frequency" {
		if math.IsInf(value, 0) || math.IsNaN(value) {
			return
		}
		n.frequency = value
	}
}

// Frequency returns the current oscillator frequency in Hz.
func (n *SineOscillatorNode) Frequency() float64 { return n.frequency }
