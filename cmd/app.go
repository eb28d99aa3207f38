// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"waveglow/internal/audio"
	"waveglow/internal/compositor"
	"waveglow/internal/config"
	"waveglow/internal/display"
	applog "waveglow/internal/log"
	"waveglow/internal/player"
	"waveglow/internal/transport"
	"waveglow/internal/transport/udp"
	"waveglow/internal/tui"
	"waveglow/internal/visualiser"
)

// headlessLogInterval is how often frames are logged when running headless
// with no other transport.
const headlessLogInterval = time.Second

// Execute runs the command selected by ParseArgs until it finishes or ctx
// is cancelled.
func Execute(ctx context.Context, opts *Options) error {
	cfg := opts.Config

	if needsPortAudio(cfg) {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
	}

	switch cfg.Command {
	case CommandList:
		return audio.ListDevices(os.Stdout)

	case CommandDevices:
		sel, ok, err := tui.PickDevice(audio.HostDevices)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		cfg.Source.Kind = config.SourceCapture
		cfg.Audio.InputDevice = sel.DeviceID
		cfg.Audio.SampleRate = sel.SampleRate
		applog.Infof("Selected %q at %.0f Hz", sel.DeviceName, sel.SampleRate)
		return run(ctx, opts)

	case CommandRender:
		return render(opts)

	default:
		return run(ctx, opts)
	}
}

// needsPortAudio reports whether the command touches capture devices.
// File playback and rendering work without a PortAudio host.
func needsPortAudio(cfg *config.Config) bool {
	switch cfg.Command {
	case CommandList, CommandDevices:
		return true
	case CommandRender:
		return false
	default:
		return cfg.Source.Kind == config.SourceCapture
	}
}

// source is an opened sample provider feeding a Window.
type source struct {
	volume  visualiser.VolumeSource
	control display.VolumeControl // nil when the volume is not adjustable
	gate    display.GateControl   // nil without a noise gate
	done    <-chan struct{}       // closed when a file ends; nil for capture
	close   func() error
}

func openSource(cfg *config.Config, window *audio.Window) (*source, error) {
	if cfg.Source.Kind == config.SourceFile {
		return openFile(cfg.Source, window)
	}
	return openCapture(cfg, window)
}

func openFile(cfg config.SourceConfig, window *audio.Window) (*source, error) {
	track, err := player.Load(cfg.File)
	if err != nil {
		return nil, err
	}
	p, err := player.New(track, window, cfg.Loop)
	if err != nil {
		return nil, err
	}
	p.SetVolume(cfg.Volume)
	if err := p.Play(); err != nil {
		return nil, err
	}
	applog.Infof("Playing %s (%.1fs at %d Hz)", cfg.File, track.Duration(), track.SampleRate)

	return &source{volume: p, control: p, done: p.Done(), close: p.Close}, nil
}

func openCapture(cfg *config.Config, window *audio.Window) (*source, error) {
	engine, err := audio.NewEngine(cfg.Audio, window)
	if err != nil {
		return nil, err
	}

	// CRITICAL: Start of real-time audio processing
	// The first call to StartInputStream triggers PortAudio to begin
	// calling the callback function, marking the start of the hot path
	if err := engine.StartInputStream(); err != nil {
		return nil, err
	}

	if cfg.Recording.Enabled {
		if err := os.MkdirAll(cfg.Recording.OutputDir, 0o755); err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to create recording directory: %w", err)
		}
		name := filepath.Join(cfg.Recording.OutputDir,
			"recording-"+time.Now().UTC().Format("02-01-2006-150405")+".wav")
		if err := engine.StartRecording(name); err != nil {
			engine.Close()
			return nil, err
		}
	}

	return &source{volume: engine, gate: engine, close: engine.Close}, nil
}

// amplitude returns the amplitude source for the configured mode, and the
// scaler when it is adjustable.
func amplitude(v config.VisualConfig) (visualiser.AmplitudeSource, *visualiser.Scaler) {
	if v.AmplitudeMode == config.AmplitudeFixed {
		return visualiser.FixedAmplitude(v.Amplitude()), nil
	}
	s := visualiser.NewScaler(v.Amplitude(), v.AmplitudeStep, v.AmplitudeMin, v.AmplitudeMax)
	return s, s
}

func visualOptions(v config.VisualConfig) visualiser.Options {
	return visualiser.Options{
		DataPoints:      v.DataPoints,
		Rise:            v.Rise,
		Fall:            v.Fall,
		VolumeThreshold: v.VolumeThreshold,
	}
}

// newVisualiser builds the surface and visualiser for cfg.
func newVisualiser(cfg *config.Config, window *audio.Window, volume visualiser.VolumeSource, amp visualiser.AmplitudeSource) (*visualiser.Visualiser, *compositor.Surface, error) {
	style, err := cfg.Style()
	if err != nil {
		return nil, nil, err
	}
	surface := compositor.NewSurface(style, cfg.Display.Width, cfg.Display.Height)
	vis, err := visualiser.New(visualOptions(cfg.Visual), window, volume, amp, surface)
	if err != nil {
		return nil, nil, err
	}
	return vis, surface, nil
}

type closer interface{ Close() error }

// startPublishers starts a publisher per enabled transport. With none
// enabled and no window, frames are logged instead.
func startPublishers(cfg config.TransportConfig, provider transport.FrameProvider, headless bool) ([]closer, error) {
	var started []closer
	fail := func(err error) ([]closer, error) {
		closeAll(started)
		return nil, err
	}

	if cfg.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.WebSocketAddress, cfg.WebSocketPath, cfg.WebSocketMinInterval)
		if err := ws.Start(); err != nil {
			ws.Close()
			return fail(err)
		}
		pub, err := transport.NewPublisher(cfg.WebSocketMinInterval, provider, ws)
		if err != nil {
			ws.Close()
			return fail(err)
		}
		pub.Start()
		started = append(started, pub)
		applog.Infof("Serving envelope frames on ws://%s%s", ws.Addr(), cfg.WebSocketPath)
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.UDPTargetAddress)
		if err != nil {
			return fail(err)
		}
		pub, err := udp.NewUDPPublisher(cfg.UDPSendInterval, sender, provider)
		if err != nil {
			sender.Close()
			return fail(err)
		}
		pub.Start()
		started = append(started, pub)
	}

	if len(started) == 0 && headless {
		pub, err := transport.NewPublisher(headlessLogInterval, provider, transport.NewLoggingTransport())
		if err != nil {
			return fail(err)
		}
		pub.Start()
		started = append(started, pub)
	}

	return started, nil
}

func closeAll(cs []closer) {
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].Close(); err != nil {
			applog.Errorf("Shutdown: %v", err)
		}
	}
}

// run visualises live capture or a playing file until the window closes,
// ctx is cancelled or, headless, the file ends.
func run(ctx context.Context, opts *Options) error {
	cfg := opts.Config

	window, err := audio.NewWindow(cfg.Visual.DataPoints)
	if err != nil {
		return err
	}

	src, err := openSource(cfg, window)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.close(); err != nil {
			applog.Errorf("Shutdown: closing source: %v", err)
		}
	}()

	amp, scaler := amplitude(cfg.Visual)
	vis, _, err := newVisualiser(cfg, window, src.volume, amp)
	if err != nil {
		return err
	}

	pubs, err := startPublishers(cfg.Transport, vis, opts.Headless)
	if err != nil {
		return err
	}
	defer closeAll(pubs)

	if opts.Headless {
		return runHeadless(ctx, vis, cfg.Display.FPS, src.done)
	}

	ctrl := display.NewController(display.Controls{
		Scaler: scaler,
		Volume: src.control,
		Gate:   src.gate,
		Reset:  vis.Reset,
	}, cfg.Display.HideCursorAfter, cfg.Display.Fullscreen)
	game := display.NewGame(vis, ctrl)
	go func() {
		<-ctx.Done()
		game.Stop()
	}()
	return display.Run(game, cfg.Display)
}

func runHeadless(ctx context.Context, vis *visualiser.Visualiser, fps int, done <-chan struct{}) error {
	loop := visualiser.NewLoop(vis, visualiser.NewTickerSource(time.Second/time.Duration(fps)))
	if err := loop.Start(ctx); err != nil {
		return err
	}
	applog.Infof("Running headless at %d fps", fps)

	select {
	case <-ctx.Done():
	case <-done:
		applog.Infof("Playback finished")
	}
	loop.Stop()
	applog.Infof("Rendered %d frames", loop.Frames())
	return nil
}

// render steps through a file at the display frame rate and writes one
// PNG per frame, without audio output.
func render(opts *Options) error {
	cfg := opts.Config

	track, err := player.Load(cfg.Source.File)
	if err != nil {
		return err
	}
	window, err := audio.NewWindow(cfg.Visual.DataPoints)
	if err != nil {
		return err
	}
	p, err := player.New(track, window, false)
	if err != nil {
		return err
	}
	p.SetVolume(cfg.Source.Volume)

	amp, _ := amplitude(cfg.Visual)
	vis, surface, err := newVisualiser(cfg, window, p, amp)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.Render.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	perFrame := max(track.SampleRate/cfg.Display.FPS, 1)
	frames := opts.Render.Frames
	if frames == 0 {
		frames = int(math.Ceil(float64(len(track.Samples)) / float64(perFrame)))
	}

	applog.Infof("Rendering %d frames (%dx%d) to %s", frames, cfg.Display.Width, cfg.Display.Height, opts.Render.OutputDir)
	for i := range frames {
		p.Feed(perFrame)
		if err := vis.Frame(); err != nil {
			return err
		}
		name := filepath.Join(opts.Render.OutputDir, fmt.Sprintf("frame_%05d.png", i))
		if err := writeFrame(name, surface); err != nil {
			return err
		}
	}
	return nil
}

func writeFrame(name string, surface *compositor.Surface) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return surface.WritePNG(f)
}
