package sample

import "sync/atomic"

// State is the most recently accepted Sample plus acquisition diagnostics.
// A reader always observes a complete snapshot, never a half-written one.
type State struct {
	Sample  Sample
	Updates uint64  // count of accepted polls since start
	RateHz  float64 // achieved poll rate
}

// StateStore publishes State snapshots by pointer swap: the producer swaps
// in a freshly built State, readers load whatever is current. Single
// writer, any number of readers.
type StateStore struct {
	cur atomic.Pointer[State]
}

func NewStateStore() *StateStore {
	s := &StateStore{}
	s.cur.Store(&State{})
	return s
}

// Publish replaces the current snapshot. Only the acquisition worker
// may call this.
func (s *StateStore) Publish(st State) {
	s.cur.Store(&st)
}

// Load returns the current snapshot by value.
func (s *StateStore) Load() State {
	return *s.cur.Load()
}
