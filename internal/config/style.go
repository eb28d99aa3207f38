// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"image/color"
	"strconv"

	"waveglow/internal/compositor"

	"github.com/lucasb-eyer/go-colorful"
)

// Style resolves the theme and any explicit colour keys into a
// compositor style.
func (c *Config) Style() (compositor.Style, error) {
	v := c.Visual
	style := compositor.DefaultStyle()

	switch v.Theme {
	case ThemeClassic, "":
	case ThemeNoir:
		style.Clear = color.NRGBA{A: 0xFF}
	default:
		return style, fmt.Errorf("visual.theme %q (want %q or %q)", v.Theme, ThemeClassic, ThemeNoir)
	}

	for _, o := range []struct {
		key   string
		value string
		dst   *color.NRGBA
	}{
		{"visual.fade_color", v.FadeColor, &style.Fade},
		{"visual.fill_color", v.FillColor, &style.Fill},
		{"visual.glow_color", v.GlowColor, &style.Glow},
		{"visual.clear_color", v.ClearColor, &style.Clear},
	} {
		if o.value == "" {
			continue
		}
		col, err := ParseColor(o.value)
		if err != nil {
			return style, fmt.Errorf("%s: %w", o.key, err)
		}
		*o.dst = col
	}
	// The background must stay opaque so the multiply fade has something to darken.
	style.Clear.A = 0xFF
	style.GlowBlur = v.GlowBlur

	return style, nil
}

// ParseColor accepts "#rrggbb" or "#rrggbbaa". Short "#rgb" forms are rejected.
func ParseColor(s string) (color.NRGBA, error) {
	if (len(s) != 7 && len(s) != 9) || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	for _, c := range s[1:] {
		if !isHexDigit(c) {
			return color.NRGBA{}, fmt.Errorf("color %q: bad hex digit %q", s, c)
		}
	}

	var alpha uint8 = 0xFF
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q: bad alpha: %w", s, err)
		}
		alpha = uint8(a)
	}

	col, err := colorful.Hex(s[:7])
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
