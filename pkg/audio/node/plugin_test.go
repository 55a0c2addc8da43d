package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
	"github.com/wavecore/rtengine/pkg/audio/pluginhost"
)

func TestPluginNodeZeroFrameCountPassesThrough(t *testing.T) {
	n := NewPluginNode()
	out := []float64{}
	view := buffer.NewView([][]float64{out}, 0)
	assert.NotPanics(t, func() { n.Process(view) })
}

func TestPluginNodeBypassedPassesThrough(t *testing.T) {
	n := NewPluginNode()
	n.SetParameter("bypass", 1.0)

	out := []float64{1, 2, 3}
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestPluginNodeEmptyHostInstanceIDPassesThroughWithoutInvokingHost(t *testing.T) {
	pluginhost.ClearCallback()
	defer pluginhost.ClearCallback()

	invoked := false
	pluginhost.SetCallback(func(req *pluginhost.RenderRequest, userData any) pluginhost.RenderResult {
		invoked = true
		return pluginhost.RenderResult{Success: true}
	}, nil)

	n := NewPluginNode()
	out := []float64{1, 2, 3}
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.False(t, invoked, "an empty host_instance_id must never reach the host callback")
	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestPluginNodeNoHostCallbackRegisteredPassesThrough(t *testing.T) {
	pluginhost.ClearCallback()
	defer pluginhost.ClearCallback()

	n := NewPluginNode()
	n.SetParameter("hostinstanceid", 7)

	out := []float64{1, 2, 3}
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestPluginNodeInvokesHostCallback(t *testing.T) {
	pluginhost.ClearCallback()
	defer pluginhost.ClearCallback()

	var seenID string
	pluginhost.SetCallback(func(req *pluginhost.RenderRequest, userData any) pluginhost.RenderResult {
		seenID = req.HostInstanceID
		for ch := 0; ch < req.AudioView.ChannelCount(); ch++ {
			s := req.AudioView.Channel(ch)
			for i := range s {
				s[i] *= 2
			}
		}
		return pluginhost.RenderResult{Success: true}
	}, nil)

	n := NewPluginNode()
	n.SetParameter("hostinstanceid", 7)

	out := []float64{1, 2, 3}
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, "7", seenID)
	assert.Equal(t, []float64{2, 4, 6}, out)
}

func TestPluginNodeRenderFailurePassesThrough(t *testing.T) {
	pluginhost.ClearCallback()
	defer pluginhost.ClearCallback()

	pluginhost.SetCallback(func(req *pluginhost.RenderRequest, userData any) pluginhost.RenderResult {
		return pluginhost.RenderResult{Success: false}
	}, nil)

	n := NewPluginNode()
	n.SetParameter("hostinstanceid", 7)

	out := []float64{1, 2, 3}
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestPluginNodePluginBypassedResultPassesThrough(t *testing.T) {
	pluginhost.ClearCallback()
	defer pluginhost.ClearCallback()

	pluginhost.SetCallback(func(req *pluginhost.RenderRequest, userData any) pluginhost.RenderResult {
		return pluginhost.RenderResult{Success: true, PluginBypassed: true}
	}, nil)

	n := NewPluginNode()
	n.SetParameter("hostinstanceid", 7)

	out := []float64{1, 2, 3}
	view := buffer.NewView([][]float64{out}, 3)
	n.Process(view)

	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestPluginNodeHostInstanceIDClearsOnNonPositive(t *testing.T) {
	n := NewPluginNode()
	n.SetParameter("hostinstanceid", 5)
	assert.Equal(t, "5", n.hostInstanceID)

	n.SetParameter("hostinstanceid", 0)
	assert.Equal(t, "", n.hostInstanceID)
}

func TestTruthyUsesEpsilon(t *testing.T) {
	assert.True(t, truthy(1.0))
	assert.True(t, truthy(-1.0))
	assert.False(t, truthy(0.0))
}
