// SPDX-License-Identifier: MIT
/*
Package display shows the visualiser in a window.

The window is driven by ebiten with TPS synchronised to the display
refresh, so one Update is one frame. Keyboard and mouse handling lives
in a Controller that does not depend on ebiten and can be tested on its
own.

Keys:

	Up/Down     amplitude factor (user mode only)
	Left/Right  playback volume (file source only)
	G           toggle the noise gate (live capture only)
	[ / ]       lower/raise the gate threshold
	R           reset the envelope
	F11         toggle fullscreen
	Esc         quit
*/
package display

import (
	"fmt"
	"strings"
	"time"

	applog "waveglow/internal/log"
	"waveglow/internal/visualiser"
)

const (
	VolumeStep = 0.05  // Volume change per key press.
	GateStep   = 0.005 // Gate threshold change per key press.
)

// VolumeControl is implemented by the file player.
type VolumeControl interface {
	Volume() float64
	SetVolume(v float64)
}

// GateControl is implemented by the capture engine.
type GateControl interface {
	GateEnabled() bool
	EnableGate()
	DisableGate()
	GetGateThreshold() float64
	SetGateThreshold(threshold float64)
}

// positioner is implemented by sources with a playback position.
type positioner interface {
	Position() time.Duration
}

// Input is the state of the controls for one frame. Key fields are true
// on the frame the key went down.
type Input struct {
	AmplitudeUp   bool
	AmplitudeDown bool
	VolumeUp      bool
	VolumeDown    bool
	GateToggle    bool
	GateUp        bool
	GateDown      bool
	Reset         bool
	Fullscreen    bool
	Quit          bool
	CursorX       int
	CursorY       int
}

// State is what the window should do after a frame's input.
type State struct {
	Quit         bool
	Fullscreen   bool
	CursorHidden bool // Cursor and overlay are hidden.
}

// Controls are the adjustable parts of a running visualiser. Any field
// may be nil.
type Controls struct {
	Scaler *visualiser.Scaler // nil in fixed amplitude mode
	Volume VolumeControl      // nil for live capture
	Gate   GateControl        // nil for file playback
	Reset  func()
}

// Controller applies input to the visualiser's adjustable sources.
type Controller struct {
	controls Controls

	cursor     cursorTimer
	fullscreen bool
}

// NewController returns a controller for c.
func NewController(c Controls, hideCursorAfter time.Duration, fullscreen bool) *Controller {
	return &Controller{
		controls:   c,
		cursor:     cursorTimer{after: hideCursorAfter},
		fullscreen: fullscreen,
	}
}

// Apply handles one frame of input at now.
func (c *Controller) Apply(in Input, now time.Time) State {
	if s := c.controls.Scaler; s != nil {
		switch {
		case in.AmplitudeUp:
			s.Step(1)
		case in.AmplitudeDown:
			s.Step(-1)
		}
	}

	if vol := c.controls.Volume; vol != nil && (in.VolumeUp || in.VolumeDown) {
		v := vol.Volume()
		if in.VolumeUp {
			v += VolumeStep
		} else {
			v -= VolumeStep
		}
		vol.SetVolume(v)
		applog.Infof("Display: Volume %.0f%%", vol.Volume()*100)
	}

	if gate := c.controls.Gate; gate != nil {
		if in.GateToggle {
			if gate.GateEnabled() {
				gate.DisableGate()
			} else {
				gate.EnableGate()
			}
			applog.Infof("Display: %s", gateLabel(gate))
		}
		if in.GateUp || in.GateDown {
			t := gate.GetGateThreshold()
			if in.GateUp {
				t += GateStep
			} else {
				t -= GateStep
			}
			gate.SetGateThreshold(t)
			applog.Infof("Display: %s", gateLabel(gate))
		}
	}

	if in.Reset && c.controls.Reset != nil {
		c.controls.Reset()
	}
	if in.Fullscreen {
		c.fullscreen = !c.fullscreen
	}

	return State{
		Quit:         in.Quit,
		Fullscreen:   c.fullscreen,
		CursorHidden: c.cursor.update(in.CursorX, in.CursorY, now),
	}
}

// Overlay returns the text shown while the cursor is visible.
func (c *Controller) Overlay() string {
	var lines []string
	if s := c.controls.Scaler; s != nil {
		lines = append(lines, visualiser.Label(s.Scale()))
	}
	if vol := c.controls.Volume; vol != nil {
		lines = append(lines, fmt.Sprintf("Volume: %.0f%%", vol.Volume()*100))
		if p, ok := vol.(positioner); ok {
			lines = append(lines, "Position: "+clock(p.Position()))
		}
	}
	if gate := c.controls.Gate; gate != nil {
		lines = append(lines, gateLabel(gate))
	}
	return strings.Join(lines, "\n")
}

func gateLabel(g GateControl) string {
	state := "off"
	if g.GateEnabled() {
		state = "on"
	}
	return fmt.Sprintf("Gate: %s (%.3f)", state, g.GetGateThreshold())
}

// clock formats d as m:ss.
func clock(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// cursorTimer hides the cursor after a period without mouse movement.
type cursorTimer struct {
	after    time.Duration // 0 never hides
	lastMove time.Time
	x, y     int
	started  bool
}

// update records the cursor position at now and reports whether the
// cursor should be hidden.
func (c *cursorTimer) update(x, y int, now time.Time) bool {
	if !c.started || x != c.x || y != c.y {
		c.started = true
		c.x, c.y = x, y
		c.lastMove = now
		return false
	}
	return c.after > 0 && now.Sub(c.lastMove) >= c.after
}
