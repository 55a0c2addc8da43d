// Package buffer provides the non-owning audio buffer view and the fixed-capacity
// scratch storage that backs it during a single render block.
package buffer

import (
	"github.com/cwbudde/algo-vecmath"
)

// View is a borrowed, non-owning handle to per-channel sample storage for one
// render block. Constructing and copying a View never allocates: the channel
// slices are held in a fixed-size array, not a slice of slices.
type View struct {
	channels     [MaxChannels][]float64
	channelCount int
	frameCount   int
}

// NewView wraps up to MaxChannels existing per-channel slices as a View. Every
// channel slice must have length >= frameCount; only the first frameCount
// samples of each are exposed.
func NewView(channels [][]float64, frameCount int) View {
	var v View
	v.channelCount = len(channels)
	v.frameCount = frameCount
	for i, ch := range channels {
		v.channels[i] = ch[:frameCount]
	}
	return v
}

// ChannelCount returns the number of channels exposed by this view.
func (v View) ChannelCount() int { return v.channelCount }

// FrameCount returns the number of frames exposed by this view.
func (v View) FrameCount() int { return v.frameCount }

// Channel returns a mutable slice of length FrameCount for channel index.
// Indexing out of range is a programmer error and panics, matching the
// original's debug-assert contract.
func (v View) Channel(index int) []float64 {
	if index < 0 || index >= v.channelCount {
		panic("buffer: channel index out of range")
	}
	return v.channels[index][:v.frameCount]
}

// Fill writes value to every sample in every channel.
func (v View) Fill(value float64) {
	for ch := 0; ch < v.channelCount; ch++ {
		dst := v.Channel(ch)
		for i := range dst {
			dst[i] = value
		}
	}
}

// AddInPlace performs dst += src elementwise across every channel. It requires
// matching channel and frame counts; mismatch is a programmer error and panics.
func (v View) AddInPlace(other View) {
	if other.ChannelCount() != v.ChannelCount() {
		panic("buffer: AddInPlace channel count mismatch")
	}
	if other.FrameCount() != v.FrameCount() {
		panic("buffer: AddInPlace frame count mismatch")
	}
	for ch := 0; ch < v.channelCount; ch++ {
		vecmath.AddBlockInPlace(v.Channel(ch), other.Channel(ch))
	}
}

// MaxChannels and MaxFrames are the compile-time scratch buffer maxima named
// in the engine block constants (spec.md §6).
const (
	MaxChannels = 4
	MaxFrames   = 1024
)

// Stack is owned, bounded-capacity scratch storage with a settable current
// frame count clamped to MaxFrames. Its total channel count is fixed at
// MaxChannels.
type Stack struct {
	data       [MaxChannels][MaxFrames]float64
	frameCount int
}

// SetFrameCount sets the active frame count, clamped to MaxFrames.
func (s *Stack) SetFrameCount(n int) {
	if n > MaxFrames {
		n = MaxFrames
	}
	if n < 0 {
		n = 0
	}
	s.frameCount = n
}

// FrameCount returns the active frame count.
func (s *Stack) FrameCount() int { return s.frameCount }

// ChannelCount returns MaxChannels; storage always carries the full compile
// time channel capacity regardless of how many channels a caller is using.
func (s *Stack) ChannelCount() int { return MaxChannels }

// Channel returns a mutable slice of length FrameCount for channel index.
func (s *Stack) Channel(index int) []float64 {
	return s.data[index][:s.frameCount]
}

// Clear zeros FrameCount samples across every channel.
func (s *Stack) Clear() {
	for ch := 0; ch < MaxChannels; ch++ {
		row := s.data[ch][:s.frameCount]
		for i := range row {
			row[i] = 0
		}
	}
}

// View returns a View over the first channelCount channels of this storage.
func (s *Stack) View(channelCount int) View {
	var v View
	v.channelCount = channelCount
	v.frameCount = s.frameCount
	for ch := 0; ch < channelCount; ch++ {
		v.channels[ch] = s.data[ch][:s.frameCount]
	}
	return v
}
