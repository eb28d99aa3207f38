// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	applog "waveglow/internal/log"
	"waveglow/internal/transport/udp"
	"waveglow/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "waveglow.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges and enumerations. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return invalid("log_level %q", c.LogLevel)
	}

	switch c.Source.Kind {
	case SourceCapture:
	case SourceFile:
		if c.Source.File == "" {
			return invalid("source.file must be set when source.kind is %q", SourceFile)
		}
	default:
		return invalid("source.kind %q (want %q or %q)", c.Source.Kind, SourceCapture, SourceFile)
	}
	if c.Source.Volume < 0 || c.Source.Volume > 1 {
		return invalid("source.volume %.3f outside [0, 1]", c.Source.Volume)
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		return invalid("audio.input_device %d (minimum %d)", a.InputDevice, MinDeviceID)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return invalid("audio.sample_rate %.0f outside [%d, %d]", a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if a.FramesPerBuffer <= 0 || a.FramesPerBuffer > MaxBufferFrames {
		return invalid("audio.frames_per_buffer %d outside [1, %d]", a.FramesPerBuffer, MaxBufferFrames)
	}
	if a.InputChannels < 1 {
		return invalid("audio.input_channels must be at least 1")
	}
	if a.GateThreshold < 0 || a.GateThreshold > 1 {
		return invalid("audio.gate_threshold %.3f outside [0, 1]", a.GateThreshold)
	}

	v := c.Visual
	if v.DataPoints < MinDataPoints || v.DataPoints > MaxDataPoints || !bitint.IsPowerOfTwo(v.DataPoints) {
		return invalid("visual.data_points %d must be a power of two in [%d, %d]", v.DataPoints, MinDataPoints, MaxDataPoints)
	}
	if v.Rise <= 0 || v.Rise > 1 || v.Fall <= 0 || v.Fall > 1 {
		return invalid("visual.rise and visual.fall must be in (0, 1]")
	}
	if v.Rise <= v.Fall {
		return invalid("visual.rise %.3f must exceed visual.fall %.3f", v.Rise, v.Fall)
	}
	if v.VolumeThreshold < 0 {
		return invalid("visual.volume_threshold must not be negative")
	}
	switch v.AmplitudeMode {
	case AmplitudeUser:
		if v.AmplitudeMin <= 0 || v.AmplitudeMax < v.AmplitudeMin {
			return invalid("visual.amplitude_min/max %.3f..%.3f", v.AmplitudeMin, v.AmplitudeMax)
		}
		if v.AmplitudeScale < v.AmplitudeMin || v.AmplitudeScale > v.AmplitudeMax {
			return invalid("visual.amplitude_scale %.3f outside [%.3f, %.3f]", v.AmplitudeScale, v.AmplitudeMin, v.AmplitudeMax)
		}
		if v.AmplitudeStep <= 0 {
			return invalid("visual.amplitude_step must be positive")
		}
	case AmplitudeFixed:
		if v.FixedAmplitude <= 0 {
			return invalid("visual.fixed_amplitude must be positive")
		}
	default:
		return invalid("visual.amplitude_mode %q (want %q or %q)", v.AmplitudeMode, AmplitudeUser, AmplitudeFixed)
	}
	if v.GlowBlur < 0 {
		return invalid("visual.glow_blur must not be negative")
	}
	if _, err := c.Style(); err != nil {
		return invalid("%v", err)
	}

	d := c.Display
	if d.Width <= 0 || d.Height <= 0 {
		return invalid("display size %dx%d", d.Width, d.Height)
	}
	if d.FPS <= 0 {
		return invalid("display.fps must be positive")
	}
	if d.HideCursorAfter < 0 {
		return invalid("display.hide_cursor_after must not be negative")
	}

	t := c.Transport
	if t.WebSocketEnabled {
		if t.WebSocketAddress == "" || !strings.HasPrefix(t.WebSocketPath, "/") {
			return invalid("transport.websocket_address and websocket_path must be set when WebSocket is enabled")
		}
		if t.WebSocketMinInterval < 0 {
			return invalid("transport.websocket_min_interval must not be negative")
		}
	}
	if t.UDPEnabled {
		if !strings.Contains(t.UDPTargetAddress, ":") {
			return invalid("transport.udp_target_address %q appears invalid (missing port?)", t.UDPTargetAddress)
		}
		if t.UDPSendInterval <= 0 {
			return invalid("transport.udp_send_interval must be positive when UDP is enabled")
		}
		if c.Visual.DataPoints > udp.MaxPoints {
			return invalid("visual.data_points %d exceeds the UDP packet limit of %d", c.Visual.DataPoints, udp.MaxPoints)
		}
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the file values.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Debugf("configuration: Overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("configuration: Overriding log_level from env: %s", val)
	}
	// ENV_SOURCE_FILE
	if val, ok := os.LookupEnv("ENV_SOURCE_FILE"); ok && val != "" {
		c.Source.Kind = SourceFile
		c.Source.File = val
		applog.Debugf("configuration: Overriding source.file from env: %s", val)
	}
	// ENV_THEME
	if val, ok := os.LookupEnv("ENV_THEME"); ok {
		c.Visual.Theme = val
		applog.Debugf("configuration: Overriding visual.theme from env: %s", val)
	}

	// ENV_WS_{...}
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			applog.Debugf("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Debugf("configuration: Overriding transport.websocket_address from env: %s", val)
	}

	// ENV_UDP_{...}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Debugf("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Debugf("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Debugf("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
