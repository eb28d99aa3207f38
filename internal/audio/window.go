// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"sync"

	"waveglow/pkg/bitint"
)

// Window keeps the most recent mono samples written by an audio thread so
// the frame loop can read a fixed-size analysis window on demand.
//
// Thread Safety:
// - Write is called from the audio callback (PortAudio or oto reader)
// - Latest is called once per display frame
// - A mutex guards the ring; both sides only copy
type Window struct {
	mu      sync.Mutex
	ring    []float32
	mask    int
	written uint64 // Total samples written since creation.
}

// NewWindow returns a window able to serve at least size samples. The ring
// is rounded up to a power of two, twice the size, so a frame read never
// races a full wrap.
func NewWindow(size int) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	capacity := bitint.NextPowerOfTwo(size * 2)
	return &Window{
		ring: make([]float32, capacity),
		mask: capacity - 1,
	}, nil
}

// Write appends samples, overwriting the oldest ones.
func (w *Window) Write(samples []float32) {
	w.mu.Lock()
	if len(samples) > len(w.ring) {
		skip := len(samples) - len(w.ring)
		w.written += uint64(skip)
		samples = samples[skip:]
	}
	pos := int(w.written) & w.mask
	n := copy(w.ring[pos:], samples)
	copy(w.ring, samples[n:])
	w.written += uint64(len(samples))
	w.mu.Unlock()
}

// Latest fills dst with the newest len(dst) samples, oldest first. When
// fewer samples have been written the front of dst is zero.
func (w *Window) Latest(dst []float32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(dst)
	if n > len(w.ring) {
		clear(dst[:n-len(w.ring)])
		dst = dst[n-len(w.ring):]
		n = len(dst)
	}

	available := n
	if w.written < uint64(n) {
		available = int(w.written)
	}
	clear(dst[:n-available])

	start := (int(w.written) - available) & w.mask
	out := dst[n-available:]
	m := copy(out, w.ring[start:])
	copy(out[m:], w.ring)
}

// Written returns the number of samples written so far.
func (w *Window) Written() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Reset discards everything written so far.
func (w *Window) Reset() {
	w.mu.Lock()
	clear(w.ring)
	w.written = 0
	w.mu.Unlock()
}
