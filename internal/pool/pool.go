// Package pool provides a fixed-size receive-buffer pool for the UDP
// transport, which needs one scratch buffer per exchange and discards it
// immediately after decoding.
package pool

import "sync"

// Buffers recycles byte slices of a single fixed size.
type Buffers struct {
	size     int
	internal sync.Pool
}

// NewBuffers creates a pool handing out buffers of exactly size bytes.
func NewBuffers(size int) *Buffers {
	return &Buffers{
		size: size,
		internal: sync.Pool{
			New: func() any {
				return make([]byte, size)
			},
		},
	}
}

// Size returns the length of every buffer the pool hands out.
func (b *Buffers) Size() int { return b.size }

// Get retrieves a buffer from the pool.
func (b *Buffers) Get() []byte {
	return b.internal.Get().([]byte)
}

// Put returns a buffer to the pool. Buffers of the wrong length are dropped
// so a caller can never poison the pool with an oversized one-off.
func (b *Buffers) Put(buf []byte) {
	if len(buf) != b.size {
		return
	}
	b.internal.Put(buf)
}
