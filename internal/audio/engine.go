// SPDX-License-Identifier: MIT
/*
Package audio implements live audio capture for the visualiser:
- Float32 capture using PortAudio
- Mono down-mix into a shared sample Window
- Noise gate that hands silence to the visualiser below a threshold
- WAV recording with atomic state management

Thread Safety:
- Uses atomic operations for recording state
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"waveglow/internal/config"
	applog "waveglow/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

type Engine struct {
	// Core configuration and state.
	config config.AudioConfig

	// Audio input handling.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Mono signal handed to the visualiser.
	window   *Window
	monoBuf  []float32
	silence  []float32
	channels int

	// Noise gate for signal conditioning. Toggled from the UI while the
	// callback reads it.
	gateEnabled   atomic.Bool
	gateThreshold atomic.Uint32 // Float32 bits of the absolute amplitude threshold (0-1)

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine prepares capture from the configured device into window. The
// stream is not opened until StartInputStream.
func NewEngine(cfg config.AudioConfig, window *Window) (*Engine, error) {
	if window == nil {
		return nil, fmt.Errorf("audio engine requires a sample window")
	}

	inputDevice, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg, window)
	engine.inputDevice = inputDevice

	if cfg.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

// newEngine builds the device-independent part of an Engine.
func newEngine(cfg config.AudioConfig, window *Window) *Engine {
	channels := max(cfg.InputChannels, 1)
	e := &Engine{
		config:   cfg,
		window:   window,
		monoBuf:  make([]float32, cfg.FramesPerBuffer),
		silence:  make([]float32, cfg.FramesPerBuffer),
		channels: channels,
	}
	e.gateEnabled.Store(cfg.GateEnabled)
	e.SetGateThreshold(cfg.GateThreshold)
	return e
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	applog.Infof("Audio: Capturing from %q (%d ch, %.0f Hz, %d frames/buffer)",
		e.inputDevice.Name, e.channels, e.config.SampleRate, e.config.FramesPerBuffer)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// Volume reports the playback volume for live capture, which is always
// unity: there is no player between the microphone and the visualiser.
func (e *Engine) Volume() float64 {
	return 1.0
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mono := e.processBuffer(in)

	// Write the mono signal to the WAV file if recording
	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		n := min(len(mono), len(e.sampleBuf.Data))
		for i, sample := range mono[:n] {
			e.sampleBuf.Data[i] = floatToPCM16(sample)
		}
		e.sampleBuf.Data = e.sampleBuf.Data[:n]

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			applog.Errorf("Audio: Error writing to WAV file: %v", err)
		}
		e.sampleBuf.Data = e.sampleBuf.Data[:cap(e.sampleBuf.Data)]
	}
}

// processBuffer down-mixes an interleaved buffer to mono and publishes it
// to the window, or publishes silence when the gate is closed. It returns
// the ungated mono signal, which aliases monoBuf.
func (e *Engine) processBuffer(buffer []float32) []float32 {
	frames := min(len(buffer)/e.channels, len(e.monoBuf))
	mono := e.monoBuf[:frames]

	var peak float32
	for i := range mono {
		var sum float32
		for ch := range e.channels {
			sum += buffer[i*e.channels+ch]
		}
		s := sum / float32(e.channels)
		mono[i] = s
		if s < 0 {
			s = -s
		}
		peak = max(peak, s)
	}

	if e.gateEnabled.Load() && peak <= e.threshold() {
		e.window.Write(e.silence[:frames])
		return mono
	}
	e.window.Write(mono)
	return mono
}

// floatToPCM16 converts a [-1, 1] sample to a clamped 16-bit value.
func floatToPCM16(s float32) int {
	v := int(s * 32767)
	return min(max(v, -32768), 32767)
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
