// Package graph implements the scene graph: node storage, the connection
// set, topological render ordering, and the per-block render loop (spec.md
// §4.6). It is the control-thread surface; Render is the only method meant
// to run on the audio thread.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wavecore/rtengine/pkg/audio/buffer"
	"github.com/wavecore/rtengine/pkg/audio/clock"
	"github.com/wavecore/rtengine/pkg/audio/node"
	"github.com/wavecore/rtengine/pkg/audio/scheduler"
)

// NodeID identifies a node within a Graph.
type NodeID string

// OutputBus is the reserved destination id a node is connected to when its
// signal should be summed into the graph's output block.
const OutputBus NodeID = "__output__"

var (
	// ErrDuplicateNode is returned by AddNode when id is already registered.
	ErrDuplicateNode = errors.New("graph: node already exists")
	// ErrNodeNotFound is returned by ScheduleAutomation when nodeID is not a
	// registered node.
	ErrNodeNotFound = errors.New("graph: node not found")
	// ErrInvalidConnection is returned by Connect for a self-loop or when
	// either endpoint (other than OutputBus) is not a registered node.
	ErrInvalidConnection = errors.New("graph: invalid connection")
	// ErrDuplicateConnection is returned by Connect when the edge already
	// exists.
	ErrDuplicateConnection = errors.New("graph: connection already exists")
	// ErrSchedulerFull is returned by ScheduleAutomation when the scheduler's
	// bounded queue has no free slot.
	ErrSchedulerFull = errors.New("graph: scheduler queue full")
	// ErrInvalidArgument is returned for out-of-range construction arguments.
	ErrInvalidArgument = errors.New("graph: invalid argument")
)

// Connection is a directed edge from one node's output to another node's
// input, or to OutputBus.
type Connection struct {
	From NodeID
	To   NodeID
}

// Graph owns a set of nodes, the connections between them, a shared render
// clock, and the scheduler of time-stamped control events. Mutation methods
// (AddNode, RemoveNode, Connect, Disconnect, ScheduleAutomation) are safe to
// call from a single control thread; Render must run on the audio thread and
// must not run concurrently with any mutation, matching the original's
// single-writer-per-surface discipline (spec.md §5).
type Graph struct {
	mu sync.Mutex

	clock     *clock.Clock
	scheduler *scheduler.Scheduler

	channelCount int

	nodes      map[NodeID]node.Node
	nodeOrder  []NodeID
	inbound    map[NodeID][]NodeID
	connSet    map[Connection]struct{}
	outputSrcs map[NodeID]struct{}
	scratch    map[NodeID]*buffer.Stack

	renderOrder []NodeID
	dirty       bool
}

// New constructs an empty Graph with channelCount output channels, driven by
// clk and dispatching automation through a scheduler with room for
// schedulerCapacity in-flight events.
func New(clk *clock.Clock, schedulerCapacity uint32, channelCount int) (*Graph, error) {
	if channelCount <= 0 || channelCount > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: channel_count must be in [1, %d], got %d", ErrInvalidArgument, buffer.MaxChannels, channelCount)
	}
	return &Graph{
		clock:        clk,
		scheduler:    scheduler.New(schedulerCapacity),
		channelCount: channelCount,
		nodes:        make(map[NodeID]node.Node),
		inbound:      make(map[NodeID][]NodeID),
		connSet:      make(map[Connection]struct{}),
		outputSrcs:   make(map[NodeID]struct{}),
		scratch:      make(map[NodeID]*buffer.Stack),
		dirty:        true,
	}, nil
}

// AddNode registers n under id and calls Prepare with the graph's clock
// sample rate. id must not already be registered.
func (g *Graph) AddNode(id NodeID, n node.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	n.Prepare(g.clock.SampleRate())
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	g.scratch[id] = &buffer.Stack{}
	g.dirty = true
	return nil
}

// RemoveNode unregisters id and drops every connection touching it. Removing
// an id that is not registered is a silent no-op, matching the original's
// tolerant mutation surface for this operation (spec.md §6).
func (g *Graph) RemoveNode(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return nil
	}
	delete(g.nodes, id)
	delete(g.scratch, id)
	delete(g.outputSrcs, id)
	delete(g.inbound, id)

	for i, candidate := range g.nodeOrder {
		if candidate == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}

	for conn := range g.connSet {
		if conn.From == id || conn.To == id {
			delete(g.connSet, conn)
			g.removeInbound(conn.To, conn.From)
		}
	}

	g.dirty = true
	return nil
}

// Connect adds a directed edge from -> to. to may be OutputBus; from must
// always name a registered node. Self-loops and duplicate edges are
// rejected.
func (g *Graph) Connect(from, to NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if from == to {
		return fmt.Errorf("%w: self-loop on %q", ErrInvalidConnection, from)
	}
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("%w: source %q not found", ErrInvalidConnection, from)
	}
	if to != OutputBus {
		if _, exists := g.nodes[to]; !exists {
			return fmt.Errorf("%w: destination %q not found", ErrInvalidConnection, to)
		}
	}

	conn := Connection{From: from, To: to}
	if _, exists := g.connSet[conn]; exists {
		return fmt.Errorf("%w: %q -> %q", ErrDuplicateConnection, from, to)
	}

	g.connSet[conn] = struct{}{}
	if to == OutputBus {
		g.outputSrcs[from] = struct{}{}
	} else {
		g.inbound[to] = append(g.inbound[to], from)
	}
	g.dirty = true
	return nil
}

// Disconnect removes the from -> to edge, if present. Disconnecting an edge
// that does not exist is a silent no-op, matching the original's tolerant
// mutation surface for this operation.
func (g *Graph) Disconnect(from, to NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conn := Connection{From: from, To: to}
	if _, exists := g.connSet[conn]; !exists {
		return
	}
	delete(g.connSet, conn)
	if to == OutputBus {
		delete(g.outputSrcs, from)
	} else {
		g.removeInbound(to, from)
	}
	g.dirty = true
}

func (g *Graph) removeInbound(to, from NodeID) {
	sources := g.inbound[to]
	for i, src := range sources {
		if src == from {
			g.inbound[to] = append(sources[:i], sources[i+1:]...)
			return
		}
	}
}

// ScheduleAutomation enqueues callback to run against nodeID's node the next
// time Render observes the clock at or past frame (spec.md §4.6, §9).
// ScheduleAutomation resolves nodeID against the current node set and
// returns ErrNodeNotFound if it is absent. The callback itself is not bound
// to a node reference at schedule time: dispatch re-resolves nodeID against
// the graph's live node set and silently drops the event if the node has
// been removed in the interim, rather than holding a raw back-pointer whose
// validity would span mutations. Single-producer: callers must not invoke
// this concurrently from more than one goroutine.
func (g *Graph) ScheduleAutomation(nodeID NodeID, frame uint64, callback func(node.Node)) error {
	g.mu.Lock()
	_, exists := g.nodes[nodeID]
	g.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, nodeID)
	}

	// dispatch runs from DispatchDueEvents, which Render calls while already
	// holding g.mu, so it must not re-lock it.
	dispatch := func() {
		n, ok := g.nodes[nodeID]
		if !ok {
			return
		}
		callback(n)
	}

	if !g.scheduler.Schedule(scheduler.Event{Frame: frame, Callback: dispatch}) {
		return ErrSchedulerFull
	}
	return nil
}

// rebuildRenderOrder recomputes g.renderOrder via Kahn's algorithm over the
// inbound-edge graph. Nodes left over once no more zero-inbound-degree node
// remains are part of a cycle; per spec.md's documented decision they are
// appended in insertion order rather than rejected, so a cyclic graph still
// renders (reading one block of stale input on the edge that closes the
// cycle) instead of refusing to produce output.
func (g *Graph) rebuildRenderOrder() {
	remaining := make(map[NodeID][]NodeID, len(g.nodes))
	inDegree := make(map[NodeID]int, len(g.nodes))
	for _, id := range g.nodeOrder {
		sources := g.inbound[id]
		remaining[id] = append([]NodeID(nil), sources...)
		inDegree[id] = len(sources)
	}

	var order []NodeID
	ready := make([]NodeID, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	visited := make(map[NodeID]bool, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)

		for _, candidate := range g.nodeOrder {
			if visited[candidate] {
				continue
			}
			for _, src := range g.inbound[candidate] {
				if src == id {
					inDegree[candidate]--
				}
			}
			if inDegree[candidate] == 0 {
				ready = append(ready, candidate)
			}
		}
	}

	if len(order) < len(g.nodeOrder) {
		for _, id := range g.nodeOrder {
			if !visited[id] {
				order = append(order, id)
				visited[id] = true
			}
		}
	}

	g.renderOrder = order
	g.dirty = false
}

// Render produces one block of output: it dispatches due automation events,
// rebuilds the topology cache if the graph changed since the last call,
// processes every node in render order (summing each node's inbound edges
// into its scratch buffer before calling Process), sums every node
// connected to OutputBus into output, and advances the clock by output's
// frame count. A request for more frames than buffer.MaxFrames zeros output
// and returns without processing any node or advancing the clock, per
// spec.md's oversized-buffer policy.
func (g *Graph) Render(output buffer.View) {
	g.mu.Lock()
	defer g.mu.Unlock()

	output.Fill(0)

	if output.FrameCount() > buffer.MaxFrames {
		return
	}

	g.scheduler.DispatchDueEvents(g.clock)

	if g.dirty {
		g.rebuildRenderOrder()
	}

	frameCount := output.FrameCount()
	channelCount := g.channelCount
	if channelCount > output.ChannelCount() {
		channelCount = output.ChannelCount()
	}

	for _, stack := range g.scratch {
		stack.SetFrameCount(frameCount)
	}

	for _, id := range g.renderOrder {
		stack := g.scratch[id]
		stack.SetFrameCount(frameCount)
		stack.Clear()
		view := stack.View(channelCount)

		for _, srcID := range g.inbound[id] {
			srcStack, ok := g.scratch[srcID]
			if !ok {
				continue
			}
			view.AddInPlace(srcStack.View(channelCount))
		}

		g.nodes[id].Process(view)
	}

	for srcID := range g.outputSrcs {
		srcStack, ok := g.scratch[srcID]
		if !ok {
			continue
		}
		output.AddInPlace(srcStack.View(channelCount))
	}

	g.clock.AdvanceBy(uint64(frameCount))
}

// Node returns the node registered under id, if any.
func (g *Graph) Node(id NodeID) (node.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// ChannelCount returns the graph's configured output channel count.
func (g *Graph) ChannelCount() int { return g.channelCount }
