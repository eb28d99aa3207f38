// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

type sample struct {
	Seq    int       `json:"seq"`
	Values []float32 `json:"values"`
}

func TestMockTransport(t *testing.T) {
	tests := []struct {
		name      string
		inputData []float32
	}{
		{"Empty Data", []float32{}},
		{"Single Value", []float32{0.5}},
		{"Multiple Values", []float32{0.1, 0.2, 0.3, 0.4, 0.5}},
		{"Large Dataset", make([]float32, 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := &MockTransport{}

			if err := mt.Send(&sample{Seq: 1, Values: tt.inputData}); err != nil {
				t.Fatalf("MockTransport.Send() error = %v", err)
			}

			if len(tt.inputData) > 0 {
				tt.inputData[0] = 999 // Modify original after Send.
			}

			var got sample
			if !mt.Last(&got) {
				t.Fatal("MockTransport.Last() found nothing")
			}
			if len(got.Values) != len(tt.inputData) {
				t.Errorf("stored length = %d, want %d", len(got.Values), len(tt.inputData))
			}
			if len(got.Values) > 0 && got.Values[0] == 999 {
				t.Errorf("MockTransport.Send() stored reference instead of copy")
			}
		})
	}
}

func TestMockTransportLifecycle(t *testing.T) {
	mt := &MockTransport{}
	var v sample
	if mt.Last(&v) {
		t.Error("Last() on empty transport should report false")
	}
	if err := mt.Send(func() {}); err == nil {
		t.Error("expected error for unencodable data")
	}
	_ = mt.Send(sample{Seq: 1})
	_ = mt.Send(sample{Seq: 2})
	if mt.Count() != 2 {
		t.Errorf("Count() = %d, want 2", mt.Count())
	}
	if mt.Last(&v); v.Seq != 2 {
		t.Errorf("Last() seq = %d, want 2", v.Seq)
	}
	_ = mt.Close()
	if !mt.Closed() {
		t.Error("Closed() should be true after Close")
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
		{"Low Sample Rate", 1024, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.size, tt.sampleRate, tt.frequency, 0.5)

			if len(result) != tt.size {
				t.Errorf("GenerateSineWave() buffer size = %d, want %d", len(result), tt.size)
			}
			var peak float64
			for _, s := range result {
				peak = math.Max(peak, math.Abs(float64(s)))
			}
			if peak > 0.5 || peak < 0.45 {
				t.Errorf("GenerateSineWave() peak = %f, want about 0.5", peak)
			}

			samplesPerCycle := tt.sampleRate / tt.frequency
			if samplesPerCycle > 2 && float64(tt.size) > samplesPerCycle {
				crossCount := 0
				for i := 1; i < tt.size; i++ {
					if (result[i-1] < 0 && result[i] >= 0) ||
						(result[i-1] >= 0 && result[i] < 0) {
						crossCount++
					}
				}

				// Two crossings per cycle, 20% margin for phase alignment.
				expectedCrossings := float64(tt.size) / (samplesPerCycle / 2)
				tolerance := 0.2 * expectedCrossings

				if math.Abs(float64(crossCount)-expectedCrossings) > tolerance {
					t.Errorf("GenerateSineWave() zero crossings = %d, expected approximately %.1f±%.1f",
						crossCount, expectedCrossings, tolerance)
				}
			}
		})
	}
}
