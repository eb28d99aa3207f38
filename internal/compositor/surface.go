// SPDX-License-Identifier: MIT
package compositor

import (
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/vector"
)

// glowPasses is the number of box blur passes used to approximate a
// gaussian glow.
const glowPasses = 3

// Surface is a raster Renderer backed by an RGBA image. It keeps the
// coverage and glow masks between frames so painting does not allocate.
type Surface struct {
	style  Style
	img    *image.RGBA
	raster *vector.Rasterizer

	coverage *image.Alpha
	glow     *image.Alpha
	scratch  []uint8

	fade       [3][256]uint8 // Per-channel multiply tables for Fade.
	glowRadius int           // Box radius per blur pass.
	fill       *image.Uniform
	glowSrc    *image.Uniform
}

var _ Renderer = (*Surface)(nil)

// NewSurface returns a surface of the given size cleared to style.Clear.
func NewSurface(style Style, width, height int) *Surface {
	s := &Surface{
		style:      style,
		raster:     vector.NewRasterizer(0, 0),
		glowRadius: boxRadius(style.GlowBlur / 2),
		fill:       image.NewUniform(style.Fill),
		glowSrc:    image.NewUniform(style.Glow),
	}

	// Multiply blend over an opaque backdrop with source-over alpha:
	// out = dst * (1 - a + a*c).
	a := float64(style.Fade.A) / 255
	channels := [3]uint8{style.Fade.R, style.Fade.G, style.Fade.B}
	for ch, c := range channels {
		k := 1 - a + a*float64(c)/255
		for v := range 256 {
			s.fade[ch][v] = uint8(math.Round(float64(v) * k))
		}
	}

	s.Resize(width, height)
	return s
}

// Style returns the colours the surface paints with.
func (s *Surface) Style() Style {
	return s.style
}

// Image returns the backing image. It is repainted in place every frame.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size implements Renderer.
func (s *Surface) Size() (width, height int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize implements Renderer. The new surface is filled with the opaque
// clear colour.
func (s *Surface) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	r := image.Rect(0, 0, width, height)

	s.img = image.NewRGBA(r)
	s.coverage = image.NewAlpha(r)
	s.glow = image.NewAlpha(r)
	s.scratch = make([]uint8, width*height)

	draw.Draw(s.img, r, image.NewUniform(s.style.Clear), image.Point{}, draw.Src)
}

// Fade implements Renderer by multiplying every pixel with the translucent
// fade colour. Alpha is left untouched; the surface stays opaque.
func (s *Surface) Fade() {
	pix := s.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = s.fade[0][pix[i]]
		pix[i+1] = s.fade[1][pix[i+1]]
		pix[i+2] = s.fade[2][pix[i+2]]
	}
}

// Fill implements Renderer. The glow is composited first so the solid fill
// sits on top of it; no outline is stroked.
func (s *Surface) Fill(path []f32.Vec2) {
	width, height := s.Size()
	if width == 0 || height == 0 || len(path) < 3 {
		return
	}
	bounds := s.img.Bounds()

	// Vertices far outside the surface are pulled in to keep the
	// rasterizer's accumulation bounded.
	lo, hi := float32(-height), float32(2*height)
	clampY := func(y float32) float32 { return min(max(y, lo), hi) }

	s.raster.Reset(width, height)
	s.raster.DrawOp = draw.Src
	s.raster.MoveTo(path[0][0], clampY(path[0][1]))
	for _, p := range path[1:] {
		s.raster.LineTo(p[0], clampY(p[1]))
	}
	s.raster.ClosePath()
	s.raster.Draw(s.coverage, bounds, image.Opaque, image.Point{})

	if s.glowRadius > 0 && s.style.Glow.A > 0 {
		copy(s.glow.Pix, s.coverage.Pix)
		for range glowPasses {
			blurRows(s.scratch, s.glow.Pix, width, height, s.glowRadius)
			blurColumns(s.glow.Pix, s.scratch, width, height, s.glowRadius)
		}
		draw.DrawMask(s.img, bounds, s.glowSrc, image.Point{}, s.glow, image.Point{}, draw.Over)
	}

	draw.DrawMask(s.img, bounds, s.fill, image.Point{}, s.coverage, image.Point{}, draw.Over)
}

// WritePNG encodes the current surface.
func (s *Surface) WritePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// boxRadius picks the per-pass box radius whose three-pass variance is
// closest to sigma squared.
func boxRadius(sigma float64) int {
	if sigma <= 0 {
		return 0
	}
	return int(math.Round((math.Sqrt(1+4*sigma*sigma*3/glowPasses) - 1) / 2))
}

// blurRows box-blurs each row of src into dst. Pixels beyond the edges
// count as transparent.
func blurRows(dst, src []uint8, width, height, r int) {
	for y := range height {
		row := y * width
		blurLine(dst[row:row+width], src[row:row+width], 1, width, r)
	}
}

// blurColumns box-blurs each column of src into dst.
func blurColumns(dst, src []uint8, width, height, r int) {
	for x := range width {
		blurLine(dst[x:], src[x:], width, height, r)
	}
}

// blurLine runs a sliding window of 2r+1 samples over count values spaced
// step apart.
func blurLine(dst, src []uint8, step, count, r int) {
	div := 2*r + 1
	sum := 0
	for j := 0; j <= r && j < count; j++ {
		sum += int(src[j*step])
	}
	for i := 0; i < count; i++ {
		dst[i*step] = uint8(sum / div)
		if add := i + r + 1; add < count {
			sum += int(src[add*step])
		}
		if sub := i - r; sub >= 0 {
			sum -= int(src[sub*step])
		}
	}
}
