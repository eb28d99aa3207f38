// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"
	"time"

	applog "waveglow/internal/log"
)

// Publisher periodically copies the latest envelope from a FrameProvider
// and sends it through a Transport. It runs in a separate goroutine managed
// by Start and Stop. Frames that have already been sent are skipped.
type Publisher struct {
	provider  FrameProvider
	transport Transport
	interval  time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	frame   Frame  // Reused between ticks.
	lastSeq uint64 // Seq of the last frame handed to the transport.
}

// NewPublisher creates a publisher. If interval is invalid (<= 0), it
// defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, provider FrameProvider, t Transport) (*Publisher, error) {
	if provider == nil {
		return nil, fmt.Errorf("Publisher: frame provider cannot be nil")
	}
	if t == nil {
		return nil, fmt.Errorf("Publisher: transport cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("Publisher: Invalid interval provided, defaulting to %s", interval)
	}

	n := provider.Len()
	return &Publisher{
		provider:  provider,
		transport: t,
		interval:  interval,
		frame: Frame{
			Upper: make([]float32, n),
			Lower: make([]float32, n),
		},
	}, nil
}

// Start launches the publishing goroutine. Subsequent calls are no-ops
// while it is running.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("Publisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}
	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("Publisher: Started (Interval: %s, Transport: %T)", p.interval, p.transport)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to terminate and waits for it to exit.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("Publisher: Stopped (%T)", p.transport)
	return nil
}

// publish sends the current frame if it is newer than the last one sent.
// It reports whether a frame went out.
func (p *Publisher) publish() bool {
	if err := p.provider.SnapshotInto(&p.frame); err != nil {
		applog.Errorf("Publisher: Error taking snapshot: %v", err)
		return false
	}
	if p.frame.Seq == 0 || p.frame.Seq == p.lastSeq {
		return false
	}
	p.lastSeq = p.frame.Seq

	if err := p.transport.Send(&p.frame); err != nil {
		applog.Warnf("Publisher: Error sending frame %d: %v", p.frame.Seq, err)
		return false
	}
	return true
}

// Close stops the publisher and closes its transport.
func (p *Publisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.transport.Close()
}

var _ interface{ Close() error } = (*Publisher)(nil)
