// Package history provides fixed-capacity ring buffers of (time, value)
// points, one per plotted channel. The acquisition worker is the only
// writer; the display goroutine reads snapshots.
package history

import "sync"

// Point is a single data point in a channel history.
type Point struct {
	Time  float64 // [s]
	Value float64 // may be NaN (missing reading; skipped by consumers)
}

// Buffer is a fixed-capacity ring of points. When full, an append
// overwrites the oldest slot. Appends and reads are mutex-guarded so a
// reader never observes a torn (time, value) pair.
type Buffer struct {
	mu    sync.Mutex
	buf   []Point
	head  int // next write position
	count int
}

// NewBuffer creates a ring buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{buf: make([]Point, capacity)}
}

// Append adds a point, overwriting the oldest when at capacity. O(1).
func (b *Buffer) Append(t, v float64) {
	b.mu.Lock()
	b.buf[b.head] = Point{Time: t, Value: v}
	b.head = (b.head + 1) % len(b.buf)
	if b.count < len(b.buf) {
		b.count++
	}
	b.mu.Unlock()
}

// Clear resets the buffer to empty without changing its capacity.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.head = 0
	b.count = 0
	b.mu.Unlock()
}

// Len returns the number of stored points.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Snapshot returns the stored points in arrival order, oldest first.
func (b *Buffer) Snapshot() []Point {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Point, b.count)
	start := b.head - b.count
	if start < 0 {
		start += len(b.buf)
	}
	for i := 0; i < b.count; i++ {
		out[i] = b.buf[(start+i)%len(b.buf)]
	}
	return out
}

// LastN returns up to the n most recent points in arrival order.
func (b *Buffer) LastN(n int) []Point {
	pts := b.Snapshot()
	if n <= 0 {
		return nil
	}
	if len(pts) > n {
		pts = pts[len(pts)-n:]
	}
	return pts
}

// Last returns the most recent point, or false when empty.
func (b *Buffer) Last() (Point, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return Point{}, false
	}
	idx := b.head - 1
	if idx < 0 {
		idx += len(b.buf)
	}
	return b.buf[idx], true
}
