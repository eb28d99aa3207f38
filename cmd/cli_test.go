// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"waveglow/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, err := ParseArgs(nil)
	require.NoError(t, err)
	require.NotNil(t, opts)

	assert.Equal(t, CommandRun, opts.Config.Command)
	assert.Equal(t, config.SourceCapture, opts.Config.Source.Kind)
	assert.Equal(t, config.DefaultDataPoints, opts.Config.Visual.DataPoints)
	assert.False(t, opts.Headless)
}

func TestParseArgsFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waveglow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
visual:
  theme: noir
  amplitude_scale: 2.0
display:
  width: 640
`), 0o644))

	opts, err := ParseArgs([]string{
		"--config", path,
		"--file", "song.mp3",
		"--volume", "0.5",
		"--amplitude", "3",
		"--headless",
		"--udp", "127.0.0.1:7000",
		"-v",
	})
	require.NoError(t, err)
	cfg := opts.Config

	assert.True(t, opts.Headless)
	assert.Equal(t, config.SourceFile, cfg.Source.Kind)
	assert.Equal(t, "song.mp3", cfg.Source.File)
	assert.Equal(t, 0.5, cfg.Source.Volume)
	assert.Equal(t, 3.0, cfg.Visual.AmplitudeScale, "flag beats file")
	assert.Equal(t, config.ThemeNoir, cfg.Visual.Theme, "unset flag keeps file value")
	assert.Equal(t, 640, cfg.Display.Width)
	assert.True(t, cfg.Transport.UDPEnabled)
	assert.Equal(t, "127.0.0.1:7000", cfg.Transport.UDPTargetAddress)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseArgsFixedAmplitude(t *testing.T) {
	opts, err := ParseArgs([]string{"--fixed-amplitude"})
	require.NoError(t, err)
	assert.Equal(t, config.AmplitudeFixed, opts.Config.Visual.AmplitudeMode)
	assert.Equal(t, config.DefaultFixedAmplitude, opts.Config.Visual.Amplitude())
}

func TestParseArgsSubcommands(t *testing.T) {
	opts, err := ParseArgs([]string{"list"})
	require.NoError(t, err)
	assert.Equal(t, CommandList, opts.Config.Command)

	opts, err = ParseArgs([]string{"devices", "--theme", "noir"})
	require.NoError(t, err)
	assert.Equal(t, CommandDevices, opts.Config.Command)
	assert.Equal(t, config.ThemeNoir, opts.Config.Visual.Theme)

	opts, err = ParseArgs([]string{"render", "--file", "a.wav", "--frames", "10", "--out", "tmp"})
	require.NoError(t, err)
	assert.Equal(t, CommandRender, opts.Config.Command)
	assert.Equal(t, RenderOptions{Frames: 10, OutputDir: "tmp"}, opts.Render)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"render without file", []string{"render"}},
		{"negative frames", []string{"render", "-f", "a.wav", "--frames", "-1"}},
		{"invalid theme", []string{"--theme", "sepia"}},
		{"volume out of range", []string{"--file", "a.wav", "--volume", "2"}},
		{"unknown flag", []string{"--nope"}},
		{"stray argument", []string{"extra"}},
		{"missing config", []string{"--config", "does-not-exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			assert.Error(t, err)
			assert.Nil(t, opts)
		})
	}
}

func TestParseArgsHelp(t *testing.T) {
	opts, err := ParseArgs([]string{"--help"})
	assert.NoError(t, err)
	assert.Nil(t, opts)
}

func TestNeedsPortAudio(t *testing.T) {
	cfg := config.NewConfig()

	cfg.Command = CommandRun
	assert.True(t, needsPortAudio(cfg))

	cfg.Source.Kind = config.SourceFile
	assert.False(t, needsPortAudio(cfg))

	cfg.Command = CommandList
	assert.True(t, needsPortAudio(cfg))

	cfg.Command = CommandRender
	assert.False(t, needsPortAudio(cfg))
}

func TestAmplitudeModes(t *testing.T) {
	v := config.NewConfig().Visual

	amp, scaler := amplitude(v)
	require.NotNil(t, scaler)
	assert.Equal(t, config.DefaultAmplitudeScale, amp.Scale())

	v.AmplitudeMode = config.AmplitudeFixed
	amp, scaler = amplitude(v)
	assert.Nil(t, scaler)
	assert.Equal(t, config.DefaultFixedAmplitude, amp.Scale())
}

func TestParseArgsGate(t *testing.T) {
	opts, err := ParseArgs([]string{"--gate", "--gate-threshold", "0.05"})
	require.NoError(t, err)
	assert.True(t, opts.Config.Audio.GateEnabled)
	assert.Equal(t, 0.05, opts.Config.Audio.GateThreshold)

	_, err = ParseArgs([]string{"--gate-threshold", "1.5"})
	assert.Error(t, err)
}
