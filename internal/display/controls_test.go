// SPDX-License-Identifier: MIT
package display

import (
	"testing"
	"time"

	"waveglow/internal/visualiser"

	"github.com/stretchr/testify/assert"
)

type fakeVolume struct{ v float64 }

func (f *fakeVolume) Volume() float64 { return f.v }
func (f *fakeVolume) SetVolume(v float64) {
	f.v = min(max(v, 0), 1)
}

type fakePlayer struct {
	fakeVolume
	pos time.Duration
}

func (f *fakePlayer) Position() time.Duration { return f.pos }

type fakeGate struct {
	enabled   bool
	threshold float64
}

func (f *fakeGate) GateEnabled() bool          { return f.enabled }
func (f *fakeGate) EnableGate()                { f.enabled = true }
func (f *fakeGate) DisableGate()               { f.enabled = false }
func (f *fakeGate) GetGateThreshold() float64  { return f.threshold }
func (f *fakeGate) SetGateThreshold(v float64) { f.threshold = min(max(v, 0), 1) }

func TestControllerAmplitude(t *testing.T) {
	scaler := visualiser.NewScaler(1, 0.05, 0.01, 10)
	c := NewController(Controls{Scaler: scaler}, 0, false)
	now := time.Now()

	c.Apply(Input{AmplitudeUp: true}, now)
	c.Apply(Input{AmplitudeUp: true}, now)
	assert.InDelta(t, 1.10, scaler.Scale(), 1e-9)

	c.Apply(Input{AmplitudeDown: true}, now)
	assert.InDelta(t, 1.05, scaler.Scale(), 1e-9)

	assert.Equal(t, "Amplitude Scale Factor: 1.050", c.Overlay())
}

func TestControllerFixedAmplitudeIgnoresKeys(t *testing.T) {
	c := NewController(Controls{}, 0, false)
	state := c.Apply(Input{AmplitudeUp: true, AmplitudeDown: true}, time.Now())
	assert.False(t, state.Quit)
	assert.Empty(t, c.Overlay())
}

func TestControllerVolume(t *testing.T) {
	vol := &fakeVolume{v: 0.5}
	c := NewController(Controls{Volume: vol}, 0, false)
	now := time.Now()

	c.Apply(Input{VolumeUp: true}, now)
	assert.InDelta(t, 0.55, vol.v, 1e-9)
	c.Apply(Input{VolumeDown: true}, now)
	c.Apply(Input{VolumeDown: true}, now)
	assert.InDelta(t, 0.45, vol.v, 1e-9)

	vol.v = 1
	c.Apply(Input{VolumeUp: true}, now)
	assert.Equal(t, 1.0, vol.v)
	assert.Equal(t, "Volume: 100%", c.Overlay())
}

func TestControllerResetFullscreenQuit(t *testing.T) {
	resets := 0
	c := NewController(Controls{Reset: func() { resets++ }}, 0, true)
	now := time.Now()

	state := c.Apply(Input{Reset: true}, now)
	assert.Equal(t, 1, resets)
	assert.True(t, state.Fullscreen)

	state = c.Apply(Input{Fullscreen: true}, now)
	assert.False(t, state.Fullscreen)
	state = c.Apply(Input{Fullscreen: true}, now)
	assert.True(t, state.Fullscreen)

	state = c.Apply(Input{Quit: true}, now)
	assert.True(t, state.Quit)
}

func TestControllerOverlayBoth(t *testing.T) {
	c := NewController(Controls{Scaler: visualiser.NewScaler(4, 0.05, 0.01, 10), Volume: &fakeVolume{v: 0.25}}, 0, false)
	assert.Equal(t, "Amplitude Scale Factor: 4.000\nVolume: 25%", c.Overlay())
}

func TestCursorTimer(t *testing.T) {
	start := time.Unix(1000, 0)
	tests := []struct {
		name  string
		after time.Duration
		steps []struct {
			x, y int
			at   time.Duration
			want bool
		}
	}{
		{
			name:  "hides after idle period",
			after: 2500 * time.Millisecond,
			steps: []struct {
				x, y int
				at   time.Duration
				want bool
			}{
				{10, 10, 0, false},
				{10, 10, 2499 * time.Millisecond, false},
				{10, 10, 2500 * time.Millisecond, true},
				{10, 10, 5 * time.Second, true},
			},
		},
		{
			name:  "movement shows and restarts",
			after: time.Second,
			steps: []struct {
				x, y int
				at   time.Duration
				want bool
			}{
				{0, 0, 0, false},
				{0, 0, 2 * time.Second, true},
				{1, 0, 2100 * time.Millisecond, false},
				{1, 0, 3 * time.Second, false},
				{1, 0, 3100 * time.Millisecond, true},
			},
		},
		{
			name:  "zero never hides",
			after: 0,
			steps: []struct {
				x, y int
				at   time.Duration
				want bool
			}{
				{0, 0, 0, false},
				{0, 0, time.Hour, false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursorTimer{after: tt.after}
			for i, s := range tt.steps {
				got := c.update(s.x, s.y, start.Add(s.at))
				assert.Equal(t, s.want, got, "step %d", i)
			}
		})
	}
}

func TestControllerCursorState(t *testing.T) {
	c := NewController(Controls{}, 100*time.Millisecond, false)
	start := time.Now()

	assert.False(t, c.Apply(Input{CursorX: 5, CursorY: 5}, start).CursorHidden)
	assert.True(t, c.Apply(Input{CursorX: 5, CursorY: 5}, start.Add(time.Second)).CursorHidden)
	assert.False(t, c.Apply(Input{CursorX: 6, CursorY: 5}, start.Add(time.Second)).CursorHidden)
}

func TestControllerGate(t *testing.T) {
	gate := &fakeGate{threshold: 0.01}
	c := NewController(Controls{Gate: gate}, 0, false)
	now := time.Now()

	assert.Equal(t, "Gate: off (0.010)", c.Overlay())

	c.Apply(Input{GateToggle: true}, now)
	assert.True(t, gate.enabled)
	c.Apply(Input{GateUp: true}, now)
	c.Apply(Input{GateUp: true}, now)
	assert.InDelta(t, 0.02, gate.threshold, 1e-9)
	assert.Equal(t, "Gate: on (0.020)", c.Overlay())

	for range 10 {
		c.Apply(Input{GateDown: true}, now)
	}
	assert.Zero(t, gate.threshold)

	c.Apply(Input{GateToggle: true}, now)
	assert.False(t, gate.enabled)
}

func TestControllerOverlayPosition(t *testing.T) {
	p := &fakePlayer{fakeVolume: fakeVolume{v: 0.5}, pos: 83*time.Second + 400*time.Millisecond}
	c := NewController(Controls{Volume: p}, 0, false)
	assert.Equal(t, "Volume: 50%\nPosition: 1:23", c.Overlay())
}
