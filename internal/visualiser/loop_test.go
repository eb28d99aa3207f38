// SPDX-License-Identifier: MIT
package visualiser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"waveglow/internal/compositor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFramer struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingFramer) Frame() error {
	c.calls.Add(1)
	if c.fail {
		return errors.New("frame failed")
	}
	return nil
}

func TestLoopDrivenFrameByFrame(t *testing.T) {
	v, rec := newScenario(t, nil, nil)
	src := NewManualSource()
	loop := NewLoop(v, src)

	require.NoError(t, loop.Start(context.Background()))
	assert.ErrorIs(t, loop.Start(context.Background()), ErrLoopRunning)

	src.Tick()
	src.Tick()
	loop.Stop()

	assert.Equal(t, uint64(2), loop.Frames())
	assert.Equal(t, uint64(2), v.Frames())
	assert.Equal(t, 2, rec.Fills)

	upper, _ := envelopeOf(t, v)
	assert.InDelta(t, -0.32, upper[0], 1e-6)
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	framer := &countingFramer{}
	src := NewManualSource()
	loop := NewLoop(framer, src)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, loop.Start(ctx))
	src.Tick()
	cancel()

	select {
	case <-loop.done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after cancel")
	}
	select {
	case src.ch <- time.Now():
		t.Fatal("loop still accepting ticks after cancel")
	case <-time.After(50 * time.Millisecond):
	}
	loop.Stop()
	loop.Stop() // idempotent
	assert.Equal(t, int32(1), framer.calls.Load())
}

func TestLoopRestartsAfterContextCancel(t *testing.T) {
	framer := &countingFramer{}
	src := NewManualSource()
	loop := NewLoop(framer, src)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, loop.Start(ctx))
	first := loop.done
	cancel()

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after cancel")
	}

	require.NoError(t, loop.Start(context.Background()))
	assert.ErrorIs(t, loop.Start(context.Background()), ErrLoopRunning)
	src.Tick()
	loop.Stop()
	assert.Equal(t, int32(1), framer.calls.Load())
}

func TestLoopCountsOnlySuccessfulFrames(t *testing.T) {
	framer := &countingFramer{fail: true}
	src := NewManualSource()
	loop := NewLoop(framer, src)

	require.NoError(t, loop.Start(context.Background()))
	src.Tick()
	src.Tick()
	loop.Stop()

	assert.Equal(t, int32(2), framer.calls.Load())
	assert.Zero(t, loop.Frames())
}

func TestLoopWithTicker(t *testing.T) {
	v, _ := newScenario(t, nil, nil)
	loop := NewLoop(v, NewTickerSource(time.Millisecond))

	require.NoError(t, loop.Start(context.Background()))
	assert.Eventually(t, func() bool { return v.Frames() >= 3 }, 2*time.Second, time.Millisecond)
	loop.Stop()

	n := v.Frames()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, v.Frames(), "no frames after Stop")
}

func TestLoopRendersOnSurface(t *testing.T) {
	provider := &scripted{frames: [][]float32{{-1, -1, -1, -1}}}
	surface := compositor.NewSurface(compositor.DefaultStyle(), 64, 32)
	v, err := New(Options{DataPoints: 4, Rise: 0.4, Fall: 0.2}, provider, nil, nil, surface)
	require.NoError(t, err)

	src := NewManualSource()
	loop := NewLoop(v, src)
	require.NoError(t, loop.Start(context.Background()))
	for range 5 {
		src.Tick()
	}
	loop.Stop()

	// The upper envelope approaches -1 so the band above the centre fills.
	v.View(func(r compositor.Renderer) {
		img := r.(*compositor.Surface).Image()
		c := img.RGBAAt(32, 10)
		assert.Equal(t, uint8(0xEE), c.R)
		assert.Equal(t, uint8(0xFF), c.G)
	})
}
