// Package stats tracks process-wide counters for the pixel ingestion engine.
//
// Every connection touches these counters on its hot path, so updates are
// plain atomic adds with no cross-counter ordering guarantee: a Snapshot is
// read channel-by-channel and may observe increments that raced each other.
package stats

import "sync/atomic"

// Stats holds the monotonic counters described by the wire-level contract:
// bytes read off the wire, pixels successfully set, and client connection
// counts. All counters are monotonic except Current, which also decrements.
type Stats struct {
	bytesRead      atomic.Uint64
	pixelsSet      atomic.Uint64
	clientsTotal   atomic.Uint64
	clientsCurrent atomic.Int64
}

// New returns a zeroed Stats ready for use.
func New() *Stats {
	return &Stats{}
}

// IncBytes records n bytes read from a connection's socket.
func (s *Stats) IncBytes(n uint64) {
	if n == 0 {
		return
	}
	s.bytesRead.Add(n)
}

// IncPixels records a successful pixel set.
func (s *Stats) IncPixels(n uint64) {
	if n == 0 {
		return
	}
	s.pixelsSet.Add(n)
}

// IncClientsTotal records a newly accepted connection.
func (s *Stats) IncClientsTotal() {
	s.clientsTotal.Add(1)
	s.clientsCurrent.Add(1)
}

// DecClientsCurrent records a connection's departure.
func (s *Stats) DecClientsCurrent() {
	s.clientsCurrent.Add(-1)
}

// Snapshot is a point-in-time, per-counter read of Stats. It is not atomic
// across fields: the four reads below happen independently.
type Snapshot struct {
	BytesRead      uint64
	PixelsSet      uint64
	ClientsTotal   uint64
	ClientsCurrent int64
}

// Snapshot reads every counter independently and returns the result.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		BytesRead:      s.bytesRead.Load(),
		PixelsSet:      s.pixelsSet.Load(),
		ClientsTotal:   s.clientsTotal.Load(),
		ClientsCurrent: s.clientsCurrent.Load(),
	}
}
