package synth

import "github.com/audiomodal/clatter/internal/pcm"

// Buffer is an owned float32 sample buffer with a logical length, per
// spec §4.1. The consumer reads Samples()[:Length], not the full backing
// array — bytes beyond Length are undefined (and typically stale from a
// previous render, left in place deliberately so Buffer can be reused
// without reallocating, the same way piano/ringing.go reuses pre-sized
// slices across Process calls).
type Buffer struct {
	data   []float32
	length int
}

// NewBuffer allocates a Buffer with the given capacity and length 0.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]float32, capacity)}
}

// Len returns the logical length.
func (b *Buffer) Len() int {
	return b.length
}

// Cap returns the backing capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// SetLength sets the logical length; n must be <= capacity.
func (b *Buffer) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	b.length = n
}

// Samples returns the live [0:length) view. Callers must not retain it
// past the next mutation of b.
func (b *Buffer) Samples() []float32 {
	return b.data[:b.length]
}

// Raw returns the full backing slice (length == capacity), for
// synthesizers that want to write past the current logical length
// before calling SetLength.
func (b *Buffer) Raw() []float32 {
	return b.data
}

// Reset zeroes the logical length without releasing the backing array,
// so a per-pair synthesizer can reuse the same Buffer across calls.
func (b *Buffer) Reset() {
	b.length = 0
}

// EnsureCap grows the backing array to at least n elements, preserving
// existing contents, so a synthesizer can size a reused Buffer up to
// whatever a given render needs without discarding prior capacity.
func (b *Buffer) EnsureCap(n int) {
	if n <= len(b.data) {
		return
	}
	grown := make([]float32, n)
	copy(grown, b.data)
	b.data = grown
}

// ToPCM16Bytes clamps each sample in [0:length) to [-1,1], scales to
// int16, and returns a little-endian byte sequence of length 2*Length().
func (b *Buffer) ToPCM16Bytes() []byte {
	return pcm.Encode16(b.Samples())
}
