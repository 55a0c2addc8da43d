package node

import (
	"math"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
	"github.com/wavecore/rtengine/pkg/audio/clip"
)

// ClipPlayerNode renders a previously registered, read-only clip buffer
// starting at an absolute render-frame offset, with optional fade-in and
// fade-out windows (spec.md §4.5.4, grounded on DSPNode.cpp:87-221's
// ClipPlayerNode). It writes absolute output values rather than summing
// into the scratch view, relying on the graph's guarantee that the scratch
// is zero when process is invoked.
type ClipPlayerNode struct {
	Base

	buf *clip.Buffer

	startFrame    uint64
	endFrame      uint64
	fadeInFrames  uint64
	fadeOutFrames uint64
	gain          float64

	// processedFrames counts every frame this node has seen across all
	// Process calls since construction, Prepare, or Reset — the absolute
	// time base start_frame/end_frame are measured against.
	processedFrames uint64

	// Declared clip metadata, settable independently of the clip actually
	// assigned via SetClip (spec.md §4.5.4's buffersamplerate/
	// bufferchannels/bufferframes parameters).
	bufferSampleRate float64
	bufferFrames     uint64
	bufferChannels   uint64
}

// NewClipPlayerNode constructs a ClipPlayerNode with no clip assigned and
// the default unity gain.
func NewClipPlayerNode() *ClipPlayerNode {
	return &ClipPlayerNode{gain: 1.0}
}

// Prepare records the sample rate and resets processedFrames to 0.
func (n *ClipPlayerNode) Prepare(sampleRate float64) {
	n.Base.Prepare(sampleRate)
	n.processedFrames = 0
}

// Reset resets processedFrames to 0 without touching the assigned clip or
// any parameter, matching DSPNode.cpp's ClipPlayerNode::reset.
func (n *ClipPlayerNode) Reset() {
	n.processedFrames = 0
}

// SetClip retains buf (releasing whatever clip was previously held) and
// records its declared metadata. Passing nil clears the assigned clip,
// releasing the held reference.
func (n *ClipPlayerNode) SetClip(buf *clip.Buffer) {
	if n.buf != nil {
		n.buf.Release()
	}
	if buf != nil {
		buf.Retain()
		n.bufferSampleRate = buf.SampleRate
		n.bufferFrames = uint64(buf.FrameCount)
		n.bufferChannels = uint64(buf.ChannelCount())
	}
	n.buf = buf
}

// sanitizeFrameValue rounds value half-up to the nearest frame index,
// clamping non-finite or non-positive values to 0, matching
// DSPNode.cpp:204-212.
func sanitizeFrameValue(value float64) uint64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return uint64(math.Floor(value + 0.5))
}

// sanitizeCountValue is sanitizeFrameValue's counterpart for frame counts
// (fade lengths, declared channel/frame counts), sharing the same rule
// (DSPNode.cpp:215-221).
func sanitizeCountValue(value float64) uint64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return uint64(math.Floor(value + 0.5))
}

// SetParameter accepts startframe, endframe, fadeinframes, fadeoutframes,
// gain, buffersamplerate, bufferchannels, and bufferframes (spec.md
// §4.5.4).
func (n *ClipPlayerNode) SetParameter(name string, value float64) {
	switch name {
	case "startframe":
		n.startFrame = sanitizeFrameValue(value)
	case "endframe":
		n.endFrame = sanitizeFrameValue(value)
	case "fadeinframes":
		n.fadeInFrames = sanitizeCountValue(value)
	case "fadeoutframes":
		n.fadeOutFrames = sanitizeCountValue(value)
	case "gain":
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return
		}
		n.gain = value
	case "buffersamplerate":
		if math.IsInf(value, 0) || math.IsNaN(value) || value <= 0 {
			n.bufferSampleRate = 0
			return
		}
		n.bufferSampleRate = value
	case "bufferchannels":
		n.bufferChannels = sanitizeCountValue(value)
	case "bufferframes":
		n.bufferFrames = sanitizeFrameValue(value)
	}
}

// Process writes absolute output values for the window [start_frame,
// effective_end) of the assigned clip, applying independent fade-in and
// fade-out envelopes, and leaves every other sample in view untouched
// (silent, per the graph's zero-filled scratch guarantee). processedFrames
// advances by the block's frame count regardless of whether a clip is
// assigned.
func (n *ClipPlayerNode) Process(view buffer.View) {
	frameCount := view.FrameCount()
	if frameCount == 0 {
		return
	}

	if n.buf == nil {
		n.processedFrames += uint64(frameCount)
		return
	}

	outputChannels := view.ChannelCount()
	bufferChannels := n.buf.ChannelCount()
	if outputChannels == 0 || bufferChannels == 0 || n.buf.FrameCount == 0 {
		n.processedFrames += uint64(frameCount)
		return
	}

	startFrame := n.startFrame
	endFrame := max(startFrame, n.endFrame)
	bufferFrameCount := uint64(n.buf.FrameCount)
	effectiveEnd := min(endFrame, startFrame+bufferFrameCount)

	var playbackFrames uint64
	if effectiveEnd > startFrame {
		playbackFrames = effectiveEnd - startFrame
	}

	var fadeOutStart uint64
	if n.fadeOutFrames >= playbackFrames || playbackFrames == 0 {
		fadeOutStart = startFrame
	} else {
		fadeOutStart = effectiveEnd - n.fadeOutFrames
	}

	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		absoluteFrame := n.processedFrames + uint64(frameIndex)
		if absoluteFrame < startFrame || absoluteFrame >= effectiveEnd {
			continue
		}

		bufferFrame := absoluteFrame - startFrame
		if bufferFrame >= bufferFrameCount {
			continue
		}

		amplitude := n.gain
		if n.fadeInFrames > 0 && absoluteFrame < startFrame+n.fadeInFrames {
			offset := absoluteFrame - startFrame
			amplitude *= float64(offset+1) / float64(n.fadeInFrames)
		}
		if n.fadeOutFrames > 0 && absoluteFrame >= fadeOutStart {
			var remaining uint64
			if effectiveEnd > absoluteFrame {
				remaining = effectiveEnd - absoluteFrame
			}
			divisor := max(uint64(1), min(n.fadeOutFrames, playbackFrames))
			amplitude *= float64(remaining) / float64(divisor)
		}

		for ch := 0; ch < outputChannels; ch++ {
			srcCh := 0
			if bufferChannels > 1 {
				srcCh = min(ch, bufferChannels-1)
			}
			sample := n.buf.Channels[srcCh][bufferFrame]
			view.Channel(ch)[frameIndex] = sample * amplitude
		}
	}

	n.processedFrames += uint64(frameCount)
}

// ProcessedFrames returns the absolute frame count this node has seen
// since construction, Prepare, or Reset.
func (n *ClipPlayerNode) ProcessedFrames() uint64 { return n.processedFrames }
