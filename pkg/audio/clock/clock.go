// Package clock provides the monotonic sample-frame counter tying render
// blocks to wall time in the audio domain.
package clock

import (
	"fmt"
	"sync/atomic"
)

// Clock is the shared, monotonically non-decreasing sample-frame counter. A
// single Clock is read by the scheduler dispatcher and written only by
// render, per spec.md §4.3/§5. Go's sync/atomic typed operations are
// sequentially consistent, a strictly stronger guarantee than the
// acquire/release discipline spec.md asks for.
type Clock struct {
	sampleRate     float64
	framesPerBlock atomic.Uint32
	frameTime      atomic.Uint64
}

// New constructs a Clock. sampleRate and framesPerBlock must both be
// positive.
func New(sampleRate float64, framesPerBlock uint32) (*Clock, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("clock: sample rate must be positive, got %v", sampleRate)
	}
	if framesPerBlock == 0 {
		return nil, fmt.Errorf("clock: frames per block must be positive")
	}
	c := &Clock{sampleRate: sampleRate}
	c.framesPerBlock.Store(framesPerBlock)
	return c, nil
}

// SampleRate returns the configured sample rate in Hz.
func (c *Clock) SampleRate() float64 { return c.sampleRate }

// FramesPerBlock returns the current block size in frames.
func (c *Clock) FramesPerBlock() uint32 { return c.framesPerBlock.Load() }

// SetFramesPerBlock updates the block size used by future Advance calls. n
// must be positive.
func (c *Clock) SetFramesPerBlock(n uint32) error {
	if n == 0 {
		return fmt.Errorf("clock: frames per block must be positive")
	}
	c.framesPerBlock.Store(n)
	return nil
}

// FrameTime reads the current frame counter.
func (c *Clock) FrameTime() uint64 { return c.frameTime.Load() }

// Advance moves the counter forward by one block's worth of frames.
func (c *Clock) Advance() { c.frameTime.Add(uint64(c.framesPerBlock.Load())) }

// AdvanceBy moves the counter forward by an arbitrary number of frames.
func (c *Clock) AdvanceBy(n uint64) { c.frameTime.Add(n) }
