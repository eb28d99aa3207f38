// SPDX-License-Identifier: MIT
//go:build headless

package display

import (
	"errors"

	"waveglow/internal/config"
	"waveglow/internal/visualiser"
)

// ErrUnavailable is returned by Run in builds without a window system.
var ErrUnavailable = errors.New("display: built without window support (headless tag)")

// Game is a placeholder in headless builds.
type Game struct {
	vis  *visualiser.Visualiser
	ctrl *Controller
}

// NewGame returns a game that cannot be run.
func NewGame(vis *visualiser.Visualiser, ctrl *Controller) *Game {
	return &Game{vis: vis, ctrl: ctrl}
}

// Stop does nothing.
func (g *Game) Stop() {}

// Run always fails; use the headless frame loop instead.
func Run(*Game, config.DisplayConfig) error {
	return ErrUnavailable
}
