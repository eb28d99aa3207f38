// SPDX-License-Identifier: MIT
/*
Package envelope implements the asymmetric envelope follower that turns raw
time-domain samples into the smoothed shape drawn each frame.

Every index is independent: the sample is split into a non-positive "top"
component and a non-negative "bottom" component, and each persistent array
moves toward its component by an exponential step

	v += (target - v) * rate

using the rise rate while the excursion grows and the fall rate while it
shrinks back toward zero. Rise is strictly greater than fall, which gives
fast attack and slow decay.
*/
package envelope

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultRise = 0.4
	DefaultFall = 0.2
)

// ErrLengthMismatch is returned by Update when the sample buffer does not
// have the filter's fixed length.
var ErrLengthMismatch = errors.New("envelope: sample buffer length mismatch")

// Filter holds the persistent upper and lower envelopes. Upper follows the
// negative excursions and Lower the positive ones; both start at zero.
type Filter struct {
	Upper []float64
	Lower []float64

	rise float64
	fall float64
}

// New returns a zeroed filter of n points.
func New(n int, rise, fall float64) (*Filter, error) {
	if n < 1 {
		return nil, fmt.Errorf("envelope: point count must be positive, got %d", n)
	}
	if rise <= 0 || rise > 1 || fall <= 0 || fall > 1 {
		return nil, fmt.Errorf("envelope: rates must be in (0, 1], got rise=%g fall=%g", rise, fall)
	}
	if rise <= fall {
		return nil, fmt.Errorf("envelope: rise rate %g must exceed fall rate %g", rise, fall)
	}

	return &Filter{
		Upper: make([]float64, n),
		Lower: make([]float64, n),
		rise:  rise,
		fall:  fall,
	}, nil
}

// Len returns the fixed number of points.
func (f *Filter) Len() int {
	return len(f.Upper)
}

// Rates returns the rise and fall rates.
func (f *Filter) Rates() (rise, fall float64) {
	return f.rise, f.fall
}

// Update advances both envelopes by one step toward samples.
// Hot path: no allocations.
func (f *Filter) Update(samples []float32) error {
	if len(samples) != len(f.Upper) {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(samples), len(f.Upper))
	}

	for i, s := range samples {
		var top, bottom float64
		if s < 0 {
			top = float64(s)
		} else {
			bottom = float64(s)
		}

		if top < f.Upper[i] {
			f.Upper[i] += (top - f.Upper[i]) * f.rise
		} else {
			f.Upper[i] += (top - f.Upper[i]) * f.fall
		}

		if bottom > f.Lower[i] {
			f.Lower[i] += (bottom - f.Lower[i]) * f.rise
		} else {
			f.Lower[i] += (bottom - f.Lower[i]) * f.fall
		}
	}

	return nil
}

// Reset returns both envelopes to zero.
func (f *Filter) Reset() {
	clear(f.Upper)
	clear(f.Lower)
}

// Peaks returns the most negative upper value and the most positive lower
// value.
func (f *Filter) Peaks() (top, bottom float64) {
	return floats.Min(f.Upper), floats.Max(f.Lower)
}
