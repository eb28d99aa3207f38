// SPDX-License-Identifier: MIT
/*
Package compositor turns the envelope arrays into one closed outline and
paints it with a trailing-fade effect.

Each frame the renderer first fades the existing picture with a translucent
multiply overlay, then fills the outline with a solid colour and a soft
glow. The surface is never cleared between frames, so motion leaves a
decaying trail; only Resize clears it.
*/
package compositor

import (
	"golang.org/x/image/math/f32"
)

// DefaultVolumeThreshold is the playback volume below which volume
// normalisation is disabled.
const DefaultVolumeThreshold = 0.01

// Renderer is the drawing surface the compositor paints on.
type Renderer interface {
	// Size returns the current surface size in pixels.
	Size() (width, height int)
	// Resize replaces the surface and clears it to the background colour.
	Resize(width, height int)
	// Fade darkens the whole surface without erasing it.
	Fade()
	// Fill paints the closed path with the fill colour and glow.
	Fill(path []f32.Vec2)
}

// VolumeScale returns the factor that cancels out playback volume, or 1
// when the volume is at or below threshold.
func VolumeScale(volume, threshold float64) float64 {
	if volume > threshold {
		return 1.0 / volume
	}
	return 1.0
}

// BuildPath appends the closed outline for upper and lower to dst[:0] and
// returns it. The result always holds 2*len(upper) vertices: the upper
// envelope left to right followed by the lower envelope right to left.
// upper and lower must have the same length.
func BuildPath(dst []f32.Vec2, upper, lower []float64, width, height int, scale float64) []f32.Vec2 {
	n := len(upper)
	dst = dst[:0]

	center := float64(height) * 0.5
	amplitude := center * scale

	for i := 0; i < n; i++ {
		dst = append(dst, f32.Vec2{xAt(i, n, width), float32(center + upper[i]*amplitude)})
	}
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, f32.Vec2{xAt(i, n, width), float32(center + lower[i]*amplitude)})
	}

	return dst
}

func xAt(i, n, width int) float32 {
	if n < 2 {
		return 0
	}
	return float32(float64(i) / float64(n-1) * float64(width))
}

// Compositor builds the outline for each frame and hands it to a Renderer.
type Compositor struct {
	renderer Renderer
	path     []f32.Vec2
}

// New returns a compositor painting on r.
func New(r Renderer) *Compositor {
	return &Compositor{renderer: r}
}

// Renderer returns the surface being painted.
func (c *Compositor) Renderer() Renderer {
	return c.renderer
}

// Resize forwards a viewport change to the renderer.
func (c *Compositor) Resize(width, height int) {
	c.renderer.Resize(width, height)
}

// Path returns the outline built by the last Paint. The slice is reused
// by the next call.
func (c *Compositor) Path() []f32.Vec2 {
	return c.path
}

// Paint fades the surface and fills the outline for the given envelopes.
// Nothing is drawn while the surface has no area.
func (c *Compositor) Paint(upper, lower []float64, volumeScale, userScale float64) {
	width, height := c.renderer.Size()
	if width <= 0 || height <= 0 {
		return
	}

	c.path = BuildPath(c.path, upper, lower, width, height, userScale*volumeScale)

	c.renderer.Fade()
	c.renderer.Fill(c.path)
}
