// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"waveglow/internal/config"
	"waveglow/pkg/build"

	"github.com/spf13/cobra"
)

// Commands selected on the command line.
const (
	CommandRun     = "run"
	CommandList    = "list"
	CommandDevices = "devices"
	CommandRender  = "render"
)

// RenderOptions controls offline rendering of a file to PNG frames.
type RenderOptions struct {
	Frames    int    // Number of frames; 0 renders the whole file.
	OutputDir string // Directory for frame_00000.png and so on.
}

// Options is the parsed command line.
type Options struct {
	Config   *config.Config
	Headless bool // Run without a window.
	Render   RenderOptions
}

// flagValues holds flag targets until the config file has been loaded.
type flagValues struct {
	configPath     string
	file           string
	device         int
	sampleRate     float64
	channels       int
	framesPerBuf   int
	lowLatency     bool
	gate           bool
	gateThreshold  float64
	record         bool
	outputDir      string
	verbose        bool
	amplitude      float64
	fixedAmplitude bool
	theme          string
	volume         float64
	loop           bool
	width          int
	height         int
	fullscreen     bool
	websocket      string
	udp            string
}

// ParseArgs parses args (without the program name). A nil Options with a
// nil error means nothing is left to do, for example after --help.
func ParseArgs(args []string) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	opts := &Options{}
	var fv flagValues

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd, &fv, CommandRun)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd, &fv, CommandList)
		},
	})

	// Interactive device picker
	rootCmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "Pick a capture device interactively, then run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd, &fv, CommandDevices)
		},
	})

	// Offline render
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render an audio file to PNG frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd, &fv, CommandRender); err != nil {
				return err
			}
			if opts.Config.Source.Kind != config.SourceFile {
				return fmt.Errorf("render needs an input file (--file)")
			}
			if opts.Render.Frames < 0 {
				return fmt.Errorf("--frames must not be negative")
			}
			return nil
		},
	}
	renderCmd.Flags().IntVar(&opts.Render.Frames, "frames", 0,
		"Number of frames to render (0 renders the whole file)")
	renderCmd.Flags().StringVar(&opts.Render.OutputDir, "out", "frames",
		"Directory for the rendered PNG frames")
	rootCmd.AddCommand(renderCmd)

	flags := rootCmd.PersistentFlags()

	// Configuration
	flags.StringVarP(&fv.configPath, "config", "C", "",
		"Path to a YAML config file (default: ./config.yaml or ./waveglow.yaml)")

	// Source
	flags.StringVarP(&fv.file, "file", "f", "",
		"Visualise an audio file (wav, mp3, ogg) instead of live capture")
	flags.Float64Var(&fv.volume, "volume", 1.0,
		"Playback volume for --file (0-1)")
	flags.BoolVar(&fv.loop, "loop", false,
		"Restart --file when it ends")

	// Audio Device Configuration
	flags.IntVarP(&fv.device, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.IntVarP(&fv.channels, "channels", "c", config.DefaultChannels,
		"Number of channels to capture (down-mixed to mono)")
	flags.Float64VarP(&fv.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVarP(&fv.framesPerBuf, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	flags.BoolVarP(&fv.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	flags.BoolVar(&fv.gate, "gate", false,
		"Enable the noise gate for live capture (toggle with G in the window)")
	flags.Float64Var(&fv.gateThreshold, "gate-threshold", config.DefaultGateThreshold,
		"Noise gate threshold as absolute amplitude (0-1)")

	// Recording Configuration
	flags.BoolVarP(&fv.record, "record", "r", false,
		"Record live capture to a WAV file")
	flags.StringVarP(&fv.outputDir, "output-dir", "o", "./recordings",
		"Directory for recordings")

	// Visual Configuration
	flags.Float64VarP(&fv.amplitude, "amplitude", "a", config.DefaultAmplitudeScale,
		"Initial amplitude scale factor")
	flags.BoolVar(&fv.fixedAmplitude, "fixed-amplitude", false,
		"Use the fixed amplitude factor instead of the adjustable one")
	flags.StringVar(&fv.theme, "theme", config.ThemeClassic,
		"Colour theme (classic or noir)")

	// Display Configuration
	flags.BoolVar(&opts.Headless, "headless", false,
		"Run without a window (publish frames only)")
	flags.IntVar(&fv.width, "width", config.DefaultWidth, "Surface width in pixels")
	flags.IntVar(&fv.height, "height", config.DefaultHeight, "Surface height in pixels")
	flags.BoolVar(&fv.fullscreen, "fullscreen", false, "Start fullscreen")

	// Transport Configuration
	flags.StringVar(&fv.websocket, "websocket", "",
		"Serve envelope frames over WebSocket on this address (e.g. :8080)")
	flags.StringVar(&fv.udp, "udp", "",
		"Send envelope frames over UDP to this address (e.g. 127.0.0.1:9090)")

	// Debug Configuration
	flags.BoolVarP(&fv.verbose, "verbose", "v", false,
		"Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if opts.Config == nil {
		return nil, nil
	}
	return opts, nil
}

// load reads the config file and applies the flags the user set on top.
func (o *Options) load(cmd *cobra.Command, fv *flagValues, command string) error {
	cfg, err := config.LoadConfig(fv.configPath)
	if err != nil {
		return err
	}
	cfg.Command = command

	changed := cmd.Flags().Changed
	if changed("file") {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.File = fv.file
	}
	if changed("volume") {
		cfg.Source.Volume = fv.volume
	}
	if changed("loop") {
		cfg.Source.Loop = fv.loop
	}
	if changed("device") {
		cfg.Audio.InputDevice = fv.device
	}
	if changed("channels") {
		cfg.Audio.InputChannels = fv.channels
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = fv.sampleRate
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = fv.framesPerBuf
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = fv.lowLatency
	}
	if changed("gate") {
		cfg.Audio.GateEnabled = fv.gate
	}
	if changed("gate-threshold") {
		cfg.Audio.GateThreshold = fv.gateThreshold
	}
	if changed("record") {
		cfg.Recording.Enabled = fv.record
	}
	if changed("output-dir") {
		cfg.Recording.OutputDir = fv.outputDir
	}
	if changed("amplitude") {
		cfg.Visual.AmplitudeScale = fv.amplitude
	}
	if changed("fixed-amplitude") && fv.fixedAmplitude {
		cfg.Visual.AmplitudeMode = config.AmplitudeFixed
	}
	if changed("theme") {
		cfg.Visual.Theme = fv.theme
	}
	if changed("width") {
		cfg.Display.Width = fv.width
	}
	if changed("height") {
		cfg.Display.Height = fv.height
	}
	if changed("fullscreen") {
		cfg.Display.Fullscreen = fv.fullscreen
	}
	if changed("websocket") {
		cfg.Transport.WebSocketEnabled = fv.websocket != ""
		cfg.Transport.WebSocketAddress = fv.websocket
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = fv.udp != ""
		cfg.Transport.UDPTargetAddress = fv.udp
	}
	if changed("verbose") && fv.verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	o.Config = cfg
	return nil
}
