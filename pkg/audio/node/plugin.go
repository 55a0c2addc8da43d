package node

import (
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
	"github.com/wavecore/rtengine/pkg/audio/pluginhost"
)

const truthyEpsilon = 1e-9

// PluginNode proxies a node's render call out to the process-wide plugin
// host bridge (spec.md §4.5.5, §4.7), grounded on PluginNode.cpp/h. When the
// node is bypassed, it passes its input through unchanged without logging.
// When no host is available or the host reports render failure, it passes
// its input through unchanged and logs the condition once rather than on
// every block.
type PluginNode struct {
	Base
	hostInstanceID string
	bypassed       bool
	capabilities   pluginhost.Capabilities

	loggedHostUnavailable atomic.Bool
	loggedRenderFailure   atomic.Bool
}

// NewPluginNode constructs a PluginNode that accepts and emits audio by
// default and is not bypassed.
func NewPluginNode() *PluginNode {
	return &PluginNode{
		capabilities: pluginhost.Capabilities{AcceptsAudio: true, EmitsAudio: true},
	}
}

// SetParameter accepts the plugin-bridge control parameters documented in
// PluginNode.h: "bypass" (truthy = |value| > epsilon) and
// "hostinstanceid" (positive finite values are rounded half-up and become
// the decimal host instance id string; values <= 0 and non-finite values
// clear it). Parameter names are matched
// case-sensitively, unlike the original's defensive toLower — the node
// factory layer that maps external names onto these calls owns any
// case-folding (spec.md §6).
func (n *PluginNode) SetParameter(name string, value float64) {
	switch name {
	case "bypass", "bypassed":
		n.bypassed = truthy(value)
	case "hostinstanceid":
		if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			n.hostInstanceID = ""
			return
		}
		n.hostInstanceID = strconv.FormatUint(uint64(math.Floor(math.Abs(value)+0.5)), 10)
	}
}

func truthy(value float64) bool {
	return math.Abs(value) > truthyEpsilon
}

// Process passes view through unchanged when frame_count or channel_count
// is zero, when bypassed, when no host instance id is assigned, or when no
// host callback is registered (logging the latter two conditions once),
// otherwise invokes the host callback; a failed or host-bypassed render
// also falls back to pass-through.
func (n *PluginNode) Process(view buffer.View) {
	if view.FrameCount() == 0 || view.ChannelCount() == 0 {
		return
	}

	if n.bypassed {
		return
	}

	if n.hostInstanceID == "" {
		if n.loggedHostUnavailable.CompareAndSwap(false, true) {
			slog.Warn("plugin host unavailable, passing audio through",
				"host_instance_id", n.hostInstanceID)
		}
		return
	}

	req := &pluginhost.RenderRequest{
		HostInstanceID: n.hostInstanceID,
		AudioView:      view,
		SampleRate:     n.SampleRate(),
		Capabilities:   n.capabilities,
		Bypassed:       n.bypassed,
	}

	result, ok := pluginhost.Render(req)
	if !ok {
		if n.loggedHostUnavailable.CompareAndSwap(false, true) {
			slog.Warn("plugin host unavailable, passing audio through",
				"host_instance_id", n.hostInstanceID)
		}
		return
	}

	if !result.Success || result.PluginBypassed {
		if !result.Success && n.loggedRenderFailure.CompareAndSwap(false, true) {
			slog.Warn("plugin render failed, passing audio through",
				"host_instance_id", n.hostInstanceID)
		}
		return
	}

	n.loggedHostUnavailable.Store(false)
	n.loggedRenderFailure.Store(false)
}
