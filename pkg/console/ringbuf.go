package console

import "sync/atomic"

// RingBuffer is a fixed capacity byte queue with exactly one producer
// (the receive pump) and one consumer (the foreground loop).
//
// Both cursors only ever move forward and are reduced modulo capacity
// on access: the buffer is empty when the cursors are equal and full
// when the write cursor is a whole capacity ahead of the read cursor.
// Each side updates only its own cursor, atomically, so no lock is
// needed under the single-producer/single-consumer discipline.
type RingBuffer struct {
	buf []byte
	w   uint32
	r   uint32
}

// NewRingBuffer creates an empty RingBuffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		panic("console: ring buffer capacity must be positive")
	}
	return &RingBuffer{buf: make([]byte, capacity)}
}

// Cap returns the fixed capacity.
func (b *RingBuffer) Cap() int {
	return len(b.buf)
}

// Len returns the number of queued bytes.
func (b *RingBuffer) Len() int {
	return int(atomic.LoadUint32(&b.w) - atomic.LoadUint32(&b.r))
}

// Full reports whether the buffer is full.
func (b *RingBuffer) Full() bool {
	return b.Len() >= len(b.buf)
}

// Put appends one byte. Producer side only.
//
// On a full buffer the incoming byte is dropped and Put reports false;
// bytes already queued are never overwritten. Dropping the newest byte
// keeps Put a single cursor move and garbles at most the tail of a
// burst instead of its middle.
func (b *RingBuffer) Put(c byte) bool {
	w := atomic.LoadUint32(&b.w)
	if w-atomic.LoadUint32(&b.r) >= uint32(len(b.buf)) {
		return false
	}
	b.buf[w%uint32(len(b.buf))] = c
	atomic.StoreUint32(&b.w, w+1)
	return true
}

// Get removes and returns the oldest byte. Consumer side only.
func (b *RingBuffer) Get() (byte, bool) {
	r := atomic.LoadUint32(&b.r)
	if atomic.LoadUint32(&b.w) == r {
		return 0, false
	}
	c := b.buf[r%uint32(len(b.buf))]
	atomic.StoreUint32(&b.r, r+1)
	return c, true
}
