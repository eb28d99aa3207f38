// SPDX-License-Identifier: MIT
package audio

import "math"

// EnableGate turns the noise gate on. Safe to call while capturing.
func (e *Engine) EnableGate() {
	e.gateEnabled.Store(true)
}

// DisableGate passes every buffer through.
func (e *Engine) DisableGate() {
	e.gateEnabled.Store(false)
}

// GateEnabled reports whether the noise gate is active.
func (e *Engine) GateEnabled() bool {
	return e.gateEnabled.Load()
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
// While the gate is closed the visualiser receives silence and the
// envelope falls back toward the centre line.
func (e *Engine) SetGateThreshold(threshold float64) {
	e.gateThreshold.Store(math.Float32bits(float32(clampUnit(threshold))))
}

// GetGateThreshold returns the current noise gate threshold as a float64.
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.threshold())
}

func (e *Engine) threshold() float32 {
	return math.Float32frombits(e.gateThreshold.Load())
}
