// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"waveglow/cmd"
	applog "waveglow/internal/log"
	"waveglow/pkg/build"
)

// main is the entry point for the visualiser.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Configure logging
//
// 2. Concurrent Phase (Hot Path):
//   - Start the sample source (capture or file playback)
//   - Start envelope publishers
//   - Render frames in the window or the headless loop
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop publishers, playback and recording
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Build information is informational only; a binary built without
	// ldflags still runs.
	if err := build.Initialize(); err != nil {
		applog.Warnf("Build info: %v", err)
	}

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts == nil {
		return
	}

	if level, ok := applog.ParseLevel(opts.Config.LogLevel); ok {
		applog.SetLevel(level)
	}
	if opts.Config.Debug {
		applog.SetLevel(applog.LevelDebug)
	}
	applog.Debugf("%s", build.GetBuildFlags())

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, opts); err != nil {
		stop()
		applog.Fatalf("%v", err)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================
	// Deferred closers in Execute have already run.
	applog.Infof("Shutdown complete")
}
