// Package netbuf implements PipeBuf: a bounded byte buffer with separate
// producer (socket read) and consumer (codec) positions, used as the input
// and output buffer pair owned by each connection.
package netbuf

import (
	"fmt"
	"math"
)

const defaultInitialCapacity = 4096

// Buffer is a growable byte region with three positions: consumed <= written
// <= capacity <= maxCapacity. Appending past capacity grows the buffer
// (compacting first) up to maxCapacity; appending past maxCapacity fails.
type Buffer struct {
	buf         []byte
	written     int
	consumed    int
	maxCapacity int
}

// New allocates a Buffer with the given initial capacity, growable up to
// maxCapacity. If initial is 0 a small default is used.
func New(initial, maxCapacity int) *Buffer {
	if initial <= 0 {
		initial = defaultInitialCapacity
		if initial > maxCapacity && maxCapacity > 0 {
			initial = maxCapacity
		}
	}
	return &Buffer{buf: make([]byte, initial), maxCapacity: maxCapacity}
}

// Unread returns the slice of bytes produced but not yet consumed. The
// returned slice is only valid until the next call to Reserve.
func (b *Buffer) Unread() []byte {
	return b.buf[b.consumed:b.written]
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return b.written - b.consumed
}

// Consume marks n bytes of the unread region as consumed. It panics if n
// exceeds the unread length — a codec bug, not a runtime condition to
// recover from.
func (b *Buffer) Consume(n int) {
	if n < 0 || n > b.Len() {
		panic(fmt.Sprintf("netbuf: consume %d exceeds unread length %d", n, b.Len()))
	}
	b.consumed += n
	if b.consumed == b.written {
		// Nothing left unread: rewind for free instead of waiting to compact.
		b.consumed = 0
		b.written = 0
	}
}

// Reserve compacts (if needed) and grows (if needed) the buffer so that at
// least n more bytes can be produced, returning the writable tail slice.
// Reserve fails if n would push the buffer past maxCapacity.
func (b *Buffer) Reserve(n int) ([]byte, error) {
	if b.written+n > len(b.buf) {
		b.compact()
	}
	if b.written+n > len(b.buf) {
		needed := b.written + n
		if b.maxCapacity > 0 && needed > b.maxCapacity {
			return nil, fmt.Errorf("netbuf: reserve %d would exceed max capacity %d", n, b.maxCapacity)
		}
		newCap := len(b.buf) * 2
		if newCap < needed {
			newCap = needed
		}
		if b.maxCapacity > 0 && newCap > b.maxCapacity {
			newCap = b.maxCapacity
		}
		grown := make([]byte, newCap)
		copy(grown, b.buf[:b.written])
		b.buf = grown
	}
	return b.buf[b.written : b.written+n], nil
}

// Produced advances the write position by n after the caller has filled the
// slice returned by Reserve.
func (b *Buffer) Produced(n int) {
	b.written += n
}

// Available returns how many more bytes could be reserved right now without
// Reserve failing, accounting for the compaction Reserve would perform first.
// An unbounded buffer (maxCapacity <= 0) reports math.MaxInt.
func (b *Buffer) Available() int {
	if b.maxCapacity <= 0 {
		return math.MaxInt
	}
	avail := b.maxCapacity - b.Len()
	if avail < 0 {
		return 0
	}
	return avail
}

// compact relocates the unread region to the start of the buffer, freeing
// the already-consumed prefix without changing the logical byte sequence.
func (b *Buffer) compact() {
	if b.consumed == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.consumed:b.written])
	b.written = n
	b.consumed = 0
}

// Full reports whether the buffer has no room left to grow further (it is
// already at maxCapacity and has no free space). Used for backpressure on
// the output buffer: once Full, the connection stops producing replies and,
// if still full, stops draining input.
func (b *Buffer) Full() bool {
	if b.maxCapacity <= 0 {
		return false
	}
	return b.written-b.consumed >= b.maxCapacity
}

// Reset discards all buffered content, keeping the allocation.
func (b *Buffer) Reset() {
	b.written = 0
	b.consumed = 0
}
