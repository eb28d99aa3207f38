// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for capture, playback and the visualiser.
const (
	// Default values for the audio capture configuration
	DefaultChannels        = 1           // Mono capture
	DefaultDeviceID        = MinDeviceID // System default device
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultGateThreshold   = 0.01        // Gate threshold (absolute amplitude)

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)

	// Visualiser defaults
	DefaultDataPoints      = 1024 // Samples per frame
	MinDataPoints          = 32
	MaxDataPoints          = 32768
	DefaultRise            = 0.4  // Rate used while an excursion grows
	DefaultFall            = 0.2  // Rate used while it shrinks
	DefaultVolumeThreshold = 0.01 // Volumes at or below this are not normalised
	DefaultAmplitudeScale  = 1.0
	DefaultFixedAmplitude  = 4.0
	DefaultAmplitudeStep   = 0.05
	DefaultAmplitudeMin    = 0.01
	DefaultAmplitudeMax    = 10.0
	DefaultGlowBlur        = 8.0

	// Display defaults
	DefaultWidth           = 1280
	DefaultHeight          = 720
	DefaultTitle           = "waveglow"
	DefaultFPS             = 60
	DefaultHideCursorAfter = 2500 * time.Millisecond

	// Source kinds
	SourceCapture = "capture" // Live PortAudio input
	SourceFile    = "file"    // Decoded file played through oto

	// Amplitude modes
	AmplitudeUser  = "user"  // Adjustable at runtime
	AmplitudeFixed = "fixed" // Constant factor

	// Themes
	ThemeClassic = "classic"
	ThemeNoir    = "noir"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"`         // Logging level ("debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of running the visualiser.
	Source    SourceConfig    `yaml:"source"`            // Where samples come from.
	Audio     AudioConfig     `yaml:"audio"`             // Live capture settings.
	Visual    VisualConfig    `yaml:"visual"`            // Envelope and compositor settings.
	Display   DisplayConfig   `yaml:"display"`           // Window settings.
	Recording RecordingConfig `yaml:"recording"`         // Capture recording settings.
	Transport TransportConfig `yaml:"transport"`         // Envelope publishing settings.
}

// SourceConfig selects the sample provider.
type SourceConfig struct {
	Kind   string  `yaml:"kind"`   // "capture" or "file".
	File   string  `yaml:"file"`   // Audio file for the "file" kind (wav, mp3, ogg).
	Volume float64 `yaml:"volume"` // Initial playback volume (0-1) for the "file" kind.
	Loop   bool    `yaml:"loop"`   // Restart the file when it ends.
}

// AudioConfig holds settings related to live audio capture.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per capture callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	InputChannels   int     `yaml:"input_channels"`    // Channels to capture; down-mixed to mono.
	GateEnabled     bool    `yaml:"gate_enabled"`      // Hand silence to the visualiser below the threshold.
	GateThreshold   float64 `yaml:"gate_threshold"`    // Gate threshold as absolute amplitude (0-1).
}

// VisualConfig holds the envelope and compositor settings.
type VisualConfig struct {
	DataPoints      int     `yaml:"data_points"`      // Samples per frame; power of two.
	Rise            float64 `yaml:"rise"`             // Envelope attack rate.
	Fall            float64 `yaml:"fall"`             // Envelope decay rate.
	VolumeThreshold float64 `yaml:"volume_threshold"` // Volume below which no normalisation happens.
	AmplitudeMode   string  `yaml:"amplitude_mode"`   // "user" or "fixed".
	AmplitudeScale  float64 `yaml:"amplitude_scale"`  // Initial user amplitude.
	FixedAmplitude  float64 `yaml:"fixed_amplitude"`  // Amplitude used in "fixed" mode.
	AmplitudeStep   float64 `yaml:"amplitude_step"`   // Change per key press in "user" mode.
	AmplitudeMin    float64 `yaml:"amplitude_min"`
	AmplitudeMax    float64 `yaml:"amplitude_max"`
	Theme           string  `yaml:"theme"`       // "classic" or "noir".
	FadeColor       string  `yaml:"fade_color"`  // #rrggbb or #rrggbbaa; overrides the theme.
	FillColor       string  `yaml:"fill_color"`  // #rrggbb or #rrggbbaa; overrides the theme.
	GlowColor       string  `yaml:"glow_color"`  // #rrggbb or #rrggbbaa; overrides the theme.
	ClearColor      string  `yaml:"clear_color"` // #rrggbb; overrides the theme.
	GlowBlur        float64 `yaml:"glow_blur"`   // Glow size in pixels; 0 disables it.
}

// DisplayConfig holds window settings.
type DisplayConfig struct {
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	Title           string        `yaml:"title"`
	Fullscreen      bool          `yaml:"fullscreen"`
	FPS             int           `yaml:"fps"`               // Frame rate of the headless loop.
	HideCursorAfter time.Duration `yaml:"hide_cursor_after"` // Mouse inactivity before the cursor hides; 0 never hides.
}

// RecordingConfig holds settings related to audio recording functionality.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`    // Record live capture to file.
	OutputDir string `yaml:"output_dir"` // Directory to save recorded audio files.
}

// TransportConfig holds settings related to publishing envelope frames.
type TransportConfig struct {
	WebSocketEnabled     bool          `yaml:"websocket_enabled"`      // Serve envelope frames over WebSocket.
	WebSocketAddress     string        `yaml:"websocket_address"`      // Listen address (e.g., ":8080").
	WebSocketPath        string        `yaml:"websocket_path"`         // Upgrade path.
	WebSocketMinInterval time.Duration `yaml:"websocket_min_interval"` // Minimum time between broadcasts.
	UDPEnabled           bool          `yaml:"udp_enabled"`            // Enable sending envelope frames over UDP.
	UDPTargetAddress     string        `yaml:"udp_target_address"`     // Target address and port (e.g., "127.0.0.1:9090").
	UDPSendInterval      time.Duration `yaml:"udp_send_interval"`      // Interval between UDP packets.
}

// NewConfig creates a new Config instance with default values.
// This is the base configuration before a file, the environment or
// command line flags are applied.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Source: SourceConfig{
			Kind:   SourceCapture,
			Volume: 1.0,
		},
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			InputChannels:   DefaultChannels,
			GateThreshold:   DefaultGateThreshold,
		},
		Visual: VisualConfig{
			DataPoints:      DefaultDataPoints,
			Rise:            DefaultRise,
			Fall:            DefaultFall,
			VolumeThreshold: DefaultVolumeThreshold,
			AmplitudeMode:   AmplitudeUser,
			AmplitudeScale:  DefaultAmplitudeScale,
			FixedAmplitude:  DefaultFixedAmplitude,
			AmplitudeStep:   DefaultAmplitudeStep,
			AmplitudeMin:    DefaultAmplitudeMin,
			AmplitudeMax:    DefaultAmplitudeMax,
			Theme:           ThemeClassic,
			GlowBlur:        DefaultGlowBlur,
		},
		Display: DisplayConfig{
			Width:           DefaultWidth,
			Height:          DefaultHeight,
			Title:           DefaultTitle,
			FPS:             DefaultFPS,
			HideCursorAfter: DefaultHideCursorAfter,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: "./recordings",
		},
		Transport: TransportConfig{
			WebSocketEnabled:     false,
			WebSocketAddress:     ":8080",
			WebSocketPath:        "/ws",
			WebSocketMinInterval: 16 * time.Millisecond,
			UDPEnabled:           false,
			UDPTargetAddress:     "127.0.0.1:9090",
			UDPSendInterval:      33 * time.Millisecond, // ~30Hz.
		},
	}
}

// Amplitude returns the starting amplitude for the configured mode.
func (v VisualConfig) Amplitude() float64 {
	if v.AmplitudeMode == AmplitudeFixed {
		return v.FixedAmplitude
	}
	return v.AmplitudeScale
}
