// SPDX-License-Identifier: MIT
//go:build !headless

package display

import (
	"sync/atomic"
	"time"

	"waveglow/internal/compositor"
	"waveglow/internal/config"
	applog "waveglow/internal/log"
	"waveglow/internal/visualiser"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a Visualiser to ebiten. The visualiser must render to a
// *compositor.Surface.
type Game struct {
	vis  *visualiser.Visualiser
	ctrl *Controller

	frame        *ebiten.Image
	overlay      bool
	cursorHidden bool
	fullscreen   bool
	stop         atomic.Bool
}

// NewGame returns a game that renders vis and applies input through ctrl.
func NewGame(vis *visualiser.Visualiser, ctrl *Controller) *Game {
	return &Game{vis: vis, ctrl: ctrl, overlay: true}
}

// Update renders one visualiser frame.
func (g *Game) Update() error {
	if g.stop.Load() || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	state := g.ctrl.Apply(Input{
		AmplitudeUp:   inpututil.IsKeyJustPressed(ebiten.KeyArrowUp),
		AmplitudeDown: inpututil.IsKeyJustPressed(ebiten.KeyArrowDown),
		VolumeUp:      inpututil.IsKeyJustPressed(ebiten.KeyArrowRight),
		VolumeDown:    inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft),
		GateToggle:    inpututil.IsKeyJustPressed(ebiten.KeyG),
		GateUp:        inpututil.IsKeyJustPressed(ebiten.KeyBracketRight),
		GateDown:      inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft),
		Reset:         inpututil.IsKeyJustPressed(ebiten.KeyR),
		Fullscreen:    inpututil.IsKeyJustPressed(ebiten.KeyF11),
		Quit:          inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		CursorX:       x,
		CursorY:       y,
	}, time.Now())
	if state.Quit {
		return ebiten.Termination
	}

	if state.Fullscreen != g.fullscreen {
		g.fullscreen = state.Fullscreen
		ebiten.SetFullscreen(g.fullscreen)
	}
	if state.CursorHidden != g.cursorHidden {
		g.cursorHidden = state.CursorHidden
		if g.cursorHidden {
			ebiten.SetCursorMode(ebiten.CursorModeHidden)
		} else {
			ebiten.SetCursorMode(ebiten.CursorModeVisible)
		}
	}
	g.overlay = !state.CursorHidden

	return g.vis.Frame()
}

// Draw copies the surface to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.vis.View(func(r compositor.Renderer) {
		surface, ok := r.(*compositor.Surface)
		if !ok {
			return
		}
		img := surface.Image()
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if w == 0 || h == 0 {
			return
		}
		if g.frame == nil || g.frame.Bounds().Dx() != w || g.frame.Bounds().Dy() != h {
			if g.frame != nil {
				g.frame.Deallocate()
			}
			g.frame = ebiten.NewImage(w, h)
		}
		g.frame.WritePixels(img.Pix)
	})
	if g.frame != nil {
		screen.DrawImage(g.frame, nil)
	}

	if g.overlay {
		if text := g.ctrl.Overlay(); text != "" {
			ebitenutil.DebugPrintAt(screen, text, 8, 8)
		}
	}
}

// Layout resizes the surface to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.vis.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Stop ends the game at the next Update. It is safe to call from any
// goroutine.
func (g *Game) Stop() {
	g.stop.Store(true)
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, cfg config.DisplayConfig) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	if cfg.Fullscreen {
		g.fullscreen = true
		ebiten.SetFullscreen(true)
	}

	applog.Infof("Display: Opening %dx%d window %q", cfg.Width, cfg.Height, cfg.Title)
	return ebiten.RunGame(g)
}
