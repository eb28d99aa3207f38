// SPDX-License-Identifier: MIT
package compositor

import "golang.org/x/image/math/f32"

// Recorder is a Renderer that draws nothing and remembers what it was
// asked to do, in order. It is meant for tests.
type Recorder struct {
	Width, Height int

	Resizes int
	Fades   int
	Fills   int

	// Ops lists every call in order: "resize", "fade" or "fill".
	Ops []string

	// LastPath is a copy of the most recent Fill argument.
	LastPath []f32.Vec2
}

var _ Renderer = (*Recorder)(nil)

// Size implements Renderer.
func (r *Recorder) Size() (width, height int) {
	return r.Width, r.Height
}

// Resize implements Renderer.
func (r *Recorder) Resize(width, height int) {
	r.Width, r.Height = width, height
	r.Resizes++
	r.Ops = append(r.Ops, "resize")
}

// Fade implements Renderer.
func (r *Recorder) Fade() {
	r.Fades++
	r.Ops = append(r.Ops, "fade")
}

// Fill implements Renderer.
func (r *Recorder) Fill(path []f32.Vec2) {
	r.Fills++
	r.Ops = append(r.Ops, "fill")
	r.LastPath = append(r.LastPath[:0], path...)
}
