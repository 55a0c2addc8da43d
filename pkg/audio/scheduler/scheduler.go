// Package scheduler implements the bounded lock-free single-producer/
// single-consumer queue that dispatches time-stamped callbacks whose frame
// has been reached (spec.md §4.4).
package scheduler

import (
	"sync/atomic"

	"github.com/wavecore/rtengine/pkg/audio/clock"
)

// Event is a scheduled, at-most-once callback tied to an absolute render
// frame. Callback may be nil, in which case dispatch simply consumes the
// slot without side effects.
type Event struct {
	Frame    uint64
	Callback func()
}

// Scheduler is a bounded ring buffer of Cap+1 slots carrying Event, matching
// the original's StaticAutomationLane<MaxPoints> shape (Automation.h):
// relaxed self-index reads, acquire reads of the peer index, release writes
// of the advanced index. Producer (Schedule) and consumer (DispatchDueEvents)
// must each be called from exactly one goroutine; mutual exclusion across
// multiple producers is the caller's responsibility.
type Scheduler struct {
	events   []Event
	capacity uint32 // Cap+1 slots
	writeIdx atomic.Uint32
	readIdx  atomic.Uint32
}

// New constructs a Scheduler with room for cap in-flight events.
func New(cap uint32) *Scheduler {
	return &Scheduler{
		events:   make([]Event, cap+1),
		capacity: cap + 1,
	}
}

func (s *Scheduler) increment(index uint32) uint32 {
	next := index + 1
	if next == s.capacity {
		next = 0
	}
	return next
}

// Schedule enqueues an event. It returns false without side effect if the
// queue is full. Single-producer only.
func (s *Scheduler) Schedule(event Event) bool {
	writeIdx := s.writeIdx.Load()
	readIdx := s.readIdx.Load()
	next := s.increment(writeIdx)
	if next == readIdx {
		return false // full
	}
	s.events[writeIdx] = event
	s.writeIdx.Store(next)
	return true
}

// DispatchDueEvents invokes every event whose Frame has been reached by
// clock's current frame time, in the non-decreasing order they were
// scheduled. Single-consumer only.
func (s *Scheduler) DispatchDueEvents(clk *clock.Clock) {
	now := clk.FrameTime()
	for {
		readIdx := s.readIdx.Load()
		writeIdx := s.writeIdx.Load()
		if readIdx == writeIdx {
			return // empty
		}
		event := s.events[readIdx]
		if event.Frame > now {
			return
		}
		if event.Callback != nil {
			event.Callback()
		}
		s.events[readIdx] = Event{}
		s.readIdx.Store(s.increment(readIdx))
	}
}
