// Package clip implements the shared, refcounted ownership of read-only clip
// sample data referenced by ClipPlayerNode instances (spec.md §3, §5, §9).
package clip

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Buffer is an immutable, refcounted block of clip sample data. It is safe
// for concurrent reads from any number of render passes; only the refcount is
// mutated after construction.
type Buffer struct {
	Key        string
	SampleRate float64
	Channels   [][]float64
	FrameCount int
	refcount   atomic.Int32
}

// ChannelCount returns the number of channels in the clip.
func (b *Buffer) ChannelCount() int { return len(b.Channels) }

// Retain increments the reference count. Every ClipPlayerNode that keeps a
// *Buffer beyond the call that handed it the reference calls Retain first,
// so the count still reports it as a holder after the registry's own
// Unregister. The storage itself stays alive as long as any Go reference to
// it exists (see Release).
func (b *Buffer) Retain() {
	b.refcount.Add(1)
}

// Release decrements the reference count. Buffer storage is Go-heap owned, so
// Release only affects bookkeeping — the runtime GC reclaims the backing
// arrays once the last holder drops its reference, matching the "released
// when no holder remains" lifecycle in spec.md §3's data model without a
// destructor step.
func (b *Buffer) Release() {
	b.refcount.Add(-1)
}

// RefCount reports the current number of holders, for diagnostics/tests.
func (b *Buffer) RefCount() int32 { return b.refcount.Load() }

// Registry is the out-of-band registration surface a host uses to publish
// decoded clip sample data (spec.md §6's Clip buffer registration contract).
// Decoding audio files is explicitly out of scope for this module; samples
// arrive already decoded into per-channel float64 slices.
type Registry struct {
	mu      sync.RWMutex
	buffers map[string]*Buffer
}

// NewRegistry constructs an empty clip registry.
func NewRegistry() *Registry {
	return &Registry{buffers: make(map[string]*Buffer)}
}

// Register validates and publishes a clip buffer under key, returning it
// with a refcount of 1, which represents the registry's own hold (released
// by Unregister); a caller that keeps the buffer calls Retain. Re-registering an existing key
// replaces it; the old *Buffer remains valid for any node still holding it.
func (r *Registry) Register(key string, sampleRate float64, channels [][]float64) (*Buffer, error) {
	if key == "" {
		return nil, fmt.Errorf("clip: registration key must not be empty")
	}
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("clip: sample rate must be positive, got %v", sampleRate)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("clip: channel_count must be > 0")
	}
	frameCount := len(channels[0])
	if frameCount == 0 {
		return nil, fmt.Errorf("clip: frame_count must be > 0")
	}
	for i, ch := range channels {
		if len(ch) < frameCount {
			return nil, fmt.Errorf("clip: channel %d shorter than declared frame_count", i)
		}
	}

	trimmed := make([][]float64, len(channels))
	for i, ch := range channels {
		trimmed[i] = ch[:frameCount]
	}

	buf := &Buffer{
		Key:        key,
		SampleRate: sampleRate,
		Channels:   trimmed,
		FrameCount: frameCount,
	}
	buf.refcount.Store(1)

	r.mu.Lock()
	r.buffers[key] = buf
	r.mu.Unlock()

	return buf, nil
}

// Lookup returns the buffer registered under key, if any.
func (r *Registry) Lookup(key string) (*Buffer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	buf, ok := r.buffers[key]
	return buf, ok
}

// Unregister drops the registry's own reference to key. Any ClipPlayerNode
// that has Retained the buffer keeps it alive.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	buf, ok := r.buffers[key]
	delete(r.buffers, key)
	r.mu.Unlock()
	if ok {
		buf.Release()
	}
}
