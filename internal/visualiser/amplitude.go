// SPDX-License-Identifier: MIT
package visualiser

import (
	"fmt"
	"math"
	"sync/atomic"

	applog "waveglow/internal/log"
)

// FixedAmplitude is an AmplitudeSource with a constant factor.
type FixedAmplitude float64

// Scale implements AmplitudeSource.
func (a FixedAmplitude) Scale() float64 { return float64(a) }

// FixedVolume is a VolumeSource with a constant volume.
type FixedVolume float64

// Volume implements VolumeSource.
func (v FixedVolume) Volume() float64 { return float64(v) }

// Scaler is a user-adjustable AmplitudeSource. It is safe to set from
// input handlers while frames read it.
type Scaler struct {
	bits     atomic.Uint64
	step     float64
	min, max float64
}

// NewScaler returns a scaler starting at initial, clamped to [min, max],
// that moves by step per Step call.
func NewScaler(initial, step, min, max float64) *Scaler {
	s := &Scaler{step: step, min: min, max: max}
	s.bits.Store(math.Float64bits(s.clamp(initial)))
	return s
}

func (s *Scaler) clamp(v float64) float64 {
	return math.Min(math.Max(v, s.min), s.max)
}

// Scale implements AmplitudeSource.
func (s *Scaler) Scale() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Set changes the factor and returns the clamped value.
func (s *Scaler) Set(v float64) float64 {
	v = s.clamp(v)
	old := math.Float64frombits(s.bits.Swap(math.Float64bits(v)))
	if Label(old) != Label(v) {
		applog.Infof("Visualiser: %s", Label(v))
	}
	return v
}

// Step moves the factor by n steps; negative n lowers it.
func (s *Scaler) Step(n int) float64 {
	// Rounded to the step grid so repeated presses don't drift.
	target := math.Round((s.Scale()+float64(n)*s.step)/s.step) * s.step
	return s.Set(target)
}

// Label formats an amplitude factor for display.
func Label(scale float64) string {
	return fmt.Sprintf("Amplitude Scale Factor: %.3f", scale)
}
