// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(from, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(from + i)
	}
	return out
}

func TestNewWindow(t *testing.T) {
	_, err := NewWindow(0)
	assert.Error(t, err)

	w, err := NewWindow(1000)
	require.NoError(t, err)
	assert.Len(t, w.ring, 2048)
}

func TestWindowLatestBeforeFull(t *testing.T) {
	w, err := NewWindow(8)
	require.NoError(t, err)

	dst := make([]float32, 8)
	for i := range dst {
		dst[i] = 99
	}
	w.Latest(dst)
	assert.Equal(t, make([]float32, 8), dst)

	w.Write([]float32{1, 2, 3})
	w.Latest(dst)
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 1, 2, 3}, dst)
}

func TestWindowWrapAround(t *testing.T) {
	w, err := NewWindow(4) // ring of 8
	require.NoError(t, err)

	w.Write(ramp(0, 6))
	w.Write(ramp(6, 5)) // wraps

	dst := make([]float32, 4)
	w.Latest(dst)
	assert.Equal(t, []float32{7, 8, 9, 10}, dst)
	assert.Equal(t, uint64(11), w.Written())
}

func TestWindowOversizedWrite(t *testing.T) {
	w, err := NewWindow(4) // ring of 8
	require.NoError(t, err)

	w.Write(ramp(0, 20))
	dst := make([]float32, 8)
	w.Latest(dst)
	assert.Equal(t, ramp(12, 8), dst)
	assert.Equal(t, uint64(20), w.Written())
}

func TestWindowOversizedRead(t *testing.T) {
	w, err := NewWindow(2) // ring of 4
	require.NoError(t, err)

	w.Write(ramp(1, 4))
	dst := make([]float32, 6)
	w.Latest(dst)
	assert.Equal(t, []float32{0, 0, 1, 2, 3, 4}, dst)
}

func TestWindowReset(t *testing.T) {
	w, err := NewWindow(4)
	require.NoError(t, err)

	w.Write(ramp(1, 4))
	w.Reset()

	dst := make([]float32, 4)
	w.Latest(dst)
	assert.Equal(t, make([]float32, 4), dst)
	assert.Zero(t, w.Written())
}

func TestWindowConcurrentAccess(t *testing.T) {
	w, err := NewWindow(256)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		chunk := ramp(0, 64)
		for range 500 {
			w.Write(chunk)
		}
	}()
	go func() {
		defer wg.Done()
		dst := make([]float32, 256)
		for range 500 {
			w.Latest(dst)
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(500*64), w.Written())
}

func TestWindowLatestHotPath(t *testing.T) {
	w, err := NewWindow(1024)
	require.NoError(t, err)
	w.Write(ramp(0, 1500))
	dst := make([]float32, 1024)

	allocs := testing.AllocsPerRun(100, func() {
		w.Latest(dst)
	})
	assert.Zero(t, allocs)
}
