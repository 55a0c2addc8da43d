// Package node defines the polymorphic DSP node contract and the concrete
// node variants that exercise the scene graph and the plugin boundary
// (spec.md §4.5).
package node

import "github.com/wavecore/rtengine/pkg/audio/buffer"

// Node is the behavioral contract every DSP node exposes. Process must
// neither allocate nor block: it runs on the audio thread.
type Node interface {
	// Prepare is invoked when the node is added to a graph or the sample
	// rate changes. It records sample_rate and resets transient state.
	Prepare(sampleRate float64)

	// Reset clears playback state without changing parameters.
	Reset()

	// Process mutates view in place to produce this node's output for the
	// current block.
	Process(view buffer.View)

	// SetParameter applies a named numeric parameter. Unknown names are
	// silently ignored; non-finite values are rejected per parameter
	// semantics documented on each concrete node.
	SetParameter(name string, value float64)
}

// Base provides the sample-rate bookkeeping shared by every concrete node.
// Concrete node types embed Base and override Prepare when they need
// additional reset behavior, calling Base.Prepare first.
type Base struct {
	sampleRate float64
}

// SampleRate returns the sample rate most recently passed to Prepare. It
// defaults to 48000 before the first Prepare call, matching the original's
// DSPNode default.
func (b *Base) SampleRate() float64 {
	if b.sampleRate == 0 {
		return 48000.0
	}
	return b.sampleRate
}

// Prepare records sampleRate.
func (b *Base) Prepare(sampleRate float64) {
	b.sampleRate = sampleRate
}

// Reset is a no-op by default; concrete nodes override it when they carry
// playback state to clear.
func (b *Base) Reset() {}
