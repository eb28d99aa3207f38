// SPDX-License-Identifier: MIT
package compositor

import "image/color"

// Style holds the colours used for the fade, the fill, the glow and the
// background shown after a resize.
type Style struct {
	Fade     color.NRGBA // Translucent colour multiplied over the surface each frame.
	Fill     color.NRGBA // Solid fill of the outline.
	Glow     color.NRGBA // Colour of the soft edge around the outline.
	GlowBlur float64     // Blur size in pixels; 0 disables the glow.
	Clear    color.NRGBA // Opaque background used by Resize.
}

// DefaultStyle returns the light-on-dark look: a cool light fade, a pale
// green fill and a mint glow on a near-black background.
func DefaultStyle() Style {
	return Style{
		Fade:     color.NRGBA{R: 204, G: 219, B: 235, A: 191}, // rgba(80%, 86%, 92%, 0.75)
		Fill:     color.NRGBA{R: 0xEE, G: 0xFF, B: 0xEE, A: 0xFF},
		Glow:     color.NRGBA{R: 102, G: 255, B: 204, A: 51}, // rgba(40%, 100%, 80%, 0.2)
		GlowBlur: 8,
		Clear:    color.NRGBA{R: 0x03, G: 0x04, B: 0x08, A: 0xFF},
	}
}
