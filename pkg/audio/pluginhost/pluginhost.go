// Package pluginhost implements the process-wide plugin host bridge that the
// core consumes as an external collaborator (spec.md §4.7). A host runtime
// registers a render callback; PluginNode instances invoke it without
// compile-time coupling to whatever plugin runtime is hosting them.
package pluginhost

import (
	"sync/atomic"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
)

// Capabilities carries the negotiated bus capability flags a PluginNode
// presents to the host. Sidechain routing semantics beyond this flag are out
// of scope (spec.md Non-goals).
type Capabilities struct {
	AcceptsAudio     bool
	EmitsAudio       bool
	AcceptsMIDI      bool
	EmitsMIDI        bool
	AcceptsSidechain bool
	EmitsSidechain   bool
}

// RenderRequest is passed to the host callback for one node's process call.
type RenderRequest struct {
	HostInstanceID string
	AudioView      buffer.View
	SampleRate     float64
	Capabilities   Capabilities
	Bypassed       bool
}

// RenderResult is returned by the host callback.
type RenderResult struct {
	Success        bool
	PluginBypassed bool
}

// RenderFunc is a host-supplied render callback. userData is opaque to this
// package; the host owns its lifetime and must outlive every render that may
// observe the slot as non-null.
type RenderFunc func(req *RenderRequest, userData any) RenderResult

type hostSlot struct {
	fn       RenderFunc
	userData any
}

var slot atomic.Pointer[hostSlot]

// SetCallback stores the host's render callback and user data, replacing any
// previously registered callback. Single-writer (control thread).
func SetCallback(fn RenderFunc, userData any) {
	slot.Store(&hostSlot{fn: fn, userData: userData})
}

// ClearCallback removes any registered callback. Callers must synchronize
// with any in-flight render before freeing userData, per spec.md §9's
// documented teardown protocol.
func ClearCallback() {
	slot.Store(nil)
}

// Render invokes the registered callback, if any. The boolean result reports
// whether a callback was registered — the idiomatic substitute for
// spec.md's Option<result>. Any panic raised by the callback is recovered
// and reported as {Success: false, PluginBypassed: false}, mirroring the
// original's catch-all around the host invocation.
func Render(req *RenderRequest) (result RenderResult, ok bool) {
	current := slot.Load()
	if current == nil || current.fn == nil {
		return RenderResult{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			result = RenderResult{Success: false, PluginBypassed: false}
			ok = true
		}
	}()
	return current.fn(req, current.userData), true
}
