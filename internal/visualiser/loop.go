// SPDX-License-Identifier: MIT
package visualiser

import (
	"context"
	"errors"
	"sync"
	"time"

	applog "waveglow/internal/log"
)

// ErrLoopRunning is returned by Start on a loop that is already running.
var ErrLoopRunning = errors.New("visualiser: loop already running")

// FrameSource delivers frame ticks. Ticks that arrive while a frame is
// still being drawn are dropped, never queued.
type FrameSource interface {
	C() <-chan time.Time
	Stop()
}

// TickerSource is a FrameSource backed by a time.Ticker.
type TickerSource struct {
	ticker *time.Ticker
}

// NewTickerSource ticks every interval.
func NewTickerSource(interval time.Duration) *TickerSource {
	return &TickerSource{ticker: time.NewTicker(interval)}
}

func (s *TickerSource) C() <-chan time.Time { return s.ticker.C }
func (s *TickerSource) Stop()               { s.ticker.Stop() }

// ManualSource delivers a tick each time Tick is called. Tick blocks until
// the loop has taken the tick.
type ManualSource struct {
	ch chan time.Time
}

// NewManualSource returns an idle manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{ch: make(chan time.Time)}
}

func (s *ManualSource) C() <-chan time.Time { return s.ch }
func (s *ManualSource) Stop()               {}

// Tick hands one tick to the loop.
func (s *ManualSource) Tick() {
	s.ch <- time.Now()
}

// Framer renders one frame per call.
type Framer interface {
	Frame() error
}

// Loop calls Frame on every tick of a FrameSource until stopped.
type Loop struct {
	framer Framer
	source FrameSource

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	frames uint64
}

// NewLoop returns a stopped loop.
func NewLoop(f Framer, source FrameSource) *Loop {
	return &Loop{framer: f, source: source}
}

// Start runs the loop on its own goroutine until ctx is cancelled or Stop
// is called. It returns ErrLoopRunning only while that goroutine is live.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		select {
		case <-l.done:
			// Exited through its parent context; release it and run again.
			l.cancel()
		default:
			return ErrLoopRunning
		}
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
	return nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.source.C():
			if err := l.framer.Frame(); err != nil {
				applog.Errorf("Visualiser: Frame error: %v", err)
				continue
			}
			l.mu.Lock()
			l.frames++
			l.mu.Unlock()
		}
	}
}

// Stop ends the loop and waits for the current frame to finish. The frame
// source is stopped too; a stopped loop cannot be restarted with it.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done
	l.source.Stop()

	l.mu.Lock()
	if l.done == done {
		l.cancel = nil
	}
	l.mu.Unlock()
}

// Frames returns the number of frames completed by the loop.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}
