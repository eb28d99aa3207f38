// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
	"testing"

	"waveglow/internal/config"
)

const (
	testSampleRate = 44100
	testFrameSize  = 256
	testWindowSize = 1024
)

var (
	quietBuffer = constantBuffer(testFrameSize, 0.001)
	loudBuffer  = constantBuffer(testFrameSize, 0.8)
)

func constantBuffer(n int, v float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = v
		} else {
			buf[i] = -v
		}
	}
	return buf
}

func newTestEngine(t testing.TB, channels int) *Engine {
	t.Helper()
	window, err := NewWindow(testWindowSize)
	if err != nil {
		t.Fatalf("NewWindow error: %v", err)
	}
	return newEngine(config.AudioConfig{
		SampleRate:      testSampleRate,
		InputChannels:   channels,
		FramesPerBuffer: testFrameSize,
	}, window)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func absFloat(v float64) float64 {
	return math.Abs(v)
}

func TestNewEngineRequiresWindow(t *testing.T) {
	if _, err := NewEngine(config.AudioConfig{}, nil); err == nil {
		t.Error("expected error for nil window")
	}
}

func TestProcessBufferMonoPassThrough(t *testing.T) {
	engine := newTestEngine(t, 1)

	in := make([]float32, testFrameSize)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.1))
	}
	engine.processBuffer(in)

	got := make([]float32, testFrameSize)
	engine.window.Latest(got)
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("sample %d: got %f, want %f", i, got[i], in[i])
		}
	}
}

func TestProcessBufferStereoDownMix(t *testing.T) {
	engine := newTestEngine(t, 2)

	// Left full scale, right silent: the mix is half scale.
	in := make([]float32, testFrameSize*2)
	for i := 0; i < len(in); i += 2 {
		in[i] = 1
	}
	engine.processBuffer(in)

	if w := engine.window.Written(); w != testFrameSize {
		t.Fatalf("written = %d, want %d", w, testFrameSize)
	}
	got := make([]float32, 4)
	engine.window.Latest(got)
	for i, v := range got {
		if v != 0.5 {
			t.Errorf("sample %d: got %f, want 0.5", i, v)
		}
	}
}

func TestVolumeIsUnity(t *testing.T) {
	engine := newTestEngine(t, 1)
	if v := engine.Volume(); v != 1.0 {
		t.Errorf("Volume() = %f, want 1.0", v)
	}
}

func TestFloatToPCM16(t *testing.T) {
	tests := []struct {
		in   float32
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-2, -32768},
		{0.5, 16383},
	}
	for _, tt := range tests {
		if got := floatToPCM16(tt.in); got != tt.want {
			t.Errorf("floatToPCM16(%f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestProcessBufferHotPath verifies the capture path does not allocate.
func TestProcessBufferHotPath(t *testing.T) {
	engine := newTestEngine(t, 2)
	buffer := constantBuffer(testFrameSize*2, 0.5)

	allocs := testing.AllocsPerRun(100, func() {
		engine.processBuffer(buffer)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in capture hot path, got %.1f", allocs)
	}
}

// BenchmarkHotPath benchmarks the down-mix, gate and window write.
func BenchmarkHotPath(b *testing.B) {
	engine := newTestEngine(b, 2)
	engine.EnableGate()
	buffer := constantBuffer(testFrameSize*2, 0.5)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		engine.processBuffer(buffer)
	}
}
