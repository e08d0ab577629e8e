// Package ring provides the fixed-capacity byte ring used by both
// directions of the DMA transport.
package ring

import (
	"go.uber.org/atomic"
)

// Buffer is a single-producer/single-consumer byte ring.
// It holds (write - read) mod Cap() live bytes and at most Cap()-1 of
// them. There is no full flag: writing past the free space overwrites
// the oldest unread bytes.
//
// Each index has exactly one writer. Bytes are stored before the index
// that publishes them, so a reader loading the index observes the bytes.
type Buffer struct {
	buf   []byte
	read  atomic.Uint32
	write atomic.Uint32
}

// New creates a Buffer with the given capacity.
func New(capacity int) *Buffer {
	if capacity < 2 {
		panic("ring: capacity must be at least 2")
	}
	return &Buffer{buf: make([]byte, capacity)}
}

// Cap returns the capacity N.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Bytes returns the backing storage. It is handed to DMA engines which
// write into it directly.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// ReadIndex returns the read index.
func (b *Buffer) ReadIndex() int {
	return int(b.read.Load())
}

// WriteIndex returns the write index.
func (b *Buffer) WriteIndex() int {
	return int(b.write.Load())
}

// Len returns the number of live bytes.
func (b *Buffer) Len() int {
	return Distance(b.ReadIndex(), b.WriteIndex(), len(b.buf))
}

// Free returns how many bytes can be put without overwriting unread data.
func (b *Buffer) Free() int {
	return len(b.buf) - 1 - b.Len()
}

// Empty indicates read == write.
func (b *Buffer) Empty() bool {
	return b.read.Load() == b.write.Load()
}

// Put copies p in at the write index, wrapping at the end of the
// storage, and returns true if unread bytes were overwritten.
// If p is longer than the storage only its trailing Cap() bytes are kept.
func (b *Buffer) Put(p []byte) (overrun bool) {
	n := len(b.buf)
	w := int(b.write.Load())
	overrun = len(p) > n-1-Distance(int(b.read.Load()), w, n)
	if len(p) > n {
		w = (w + len(p) - n) % n
		p = p[len(p)-n:]
	}
	c := copy(b.buf[w:], p)
	copy(b.buf, p[c:])
	b.write.Store(uint32((w + len(p)) % n))
	return
}

// Pending returns the contiguous run of unread bytes starting at the read
// index and the read index to commit once the run is consumed.
// When the unread region wraps, only the run up to the end of the
// storage is returned and next is 0; the wrapped part is returned by the
// following call.
func (b *Buffer) Pending() (run []byte, next int) {
	r, w := int(b.read.Load()), int(b.write.Load())
	if w < r {
		return b.buf[r:], 0
	}
	return b.buf[r:w], w
}

// Commit sets the read index, normally to the value returned by Pending.
func (b *Buffer) Commit(next int) {
	b.read.Store(uint32(next % len(b.buf)))
}

// Publish sets the write index from an external producer position, such
// as a DMA engine writing into Bytes().
func (b *Buffer) Publish(pos int) {
	b.write.Store(uint32(pos % len(b.buf)))
}

// Get consumes one byte. ok is false if the buffer is empty.
func (b *Buffer) Get() (c byte, ok bool) {
	r := b.read.Load()
	if r == b.write.Load() {
		return 0, false
	}
	c = b.buf[r]
	b.read.Store((r + 1) % uint32(len(b.buf)))
	return c, true
}

// Tail returns a copy of the k bytes preceding the write index, oldest
// first. k is clamped to Cap()-1.
func (b *Buffer) Tail(k int) []byte {
	n := len(b.buf)
	if k > n-1 {
		k = n - 1
	}
	if k <= 0 {
		return nil
	}
	out := make([]byte, k)
	start := (int(b.write.Load()) - k + n) % n
	c := copy(out, b.buf[start:])
	copy(out[c:], b.buf)
	return out
}

// Reset sets both indices to zero.
func (b *Buffer) Reset() {
	b.read.Store(0)
	b.write.Store(0)
}

// Distance returns (to - from) mod n.
func Distance(from, to, n int) int {
	return ((to-from)%n + n) % n
}
