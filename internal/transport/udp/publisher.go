// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "waveglow/internal/log"
	"waveglow/internal/transport"
)

// HeaderSize is the byte length of the fixed packet header.
const HeaderSize = 4 + 8 + 2

// MaxDatagram is the largest UDP payload over IPv4.
const MaxDatagram = 65507

// MaxPoints is the largest envelope whose packet fits one datagram.
const MaxPoints = (MaxDatagram - HeaderSize) / 8

// UDPPublisher periodically fetches the envelope, packs it into a binary
// packet and sends it over UDP using a UDPSender. It runs in a separate
// goroutine managed by Start and Stop.
type UDPPublisher struct {
	sender   *UDPSender
	provider transport.FrameProvider
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum uint32 // Monotonically increasing sequence number for packets.
	lastFrame   uint64 // Visualiser frame number of the last packet.

	// Pre-allocated buffers reused by every packet.
	frame        transport.Frame
	packetBuffer *bytes.Buffer
}

// NewUDPPublisher creates and initializes a new UDPPublisher.
// If the provided interval is invalid (<= 0), it defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender *UDPSender, provider transport.FrameProvider) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("UDPPublisher: frame provider cannot be nil")
	}

	n := provider.Len()
	if n > MaxPoints {
		return nil, fmt.Errorf("UDPPublisher: %d points exceed the packet limit of %d", n, MaxPoints)
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("UDPPublisher: Initializing (Interval: %s, Points: %d)", interval, n)

	return &UDPPublisher{
		sender:   sender,
		provider: provider,
		interval: interval,
		frame: transport.Frame{
			Upper: make([]float32, n),
			Lower: make([]float32, n),
		},
		packetBuffer: bytes.NewBuffer(make([]byte, 0, HeaderSize+8*n)),
	}, nil
}

// Start begins the periodic publishing process. It is safe to call Start
// multiple times; subsequent calls are no-ops if already started.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Capture local variables for the goroutine to avoid data races on p.ticker/p.doneChan
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Infof("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDPPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Point Count       | uint16         | 2            | Envelope length (N)     |
| Upper             | []float32      | N * 4        | Upper envelope, i = 0.. |
| Lower             | []float32      | N * 4        | Lower envelope, i = 0.. |
+-----------------------------------------------------------------------------+
*/

// buildAndSendPacket runs on each tick. It skips ticks where the
// visualiser has not produced a new frame.
func (p *UDPPublisher) buildAndSendPacket() bool {
	if err := p.provider.SnapshotInto(&p.frame); err != nil {
		applog.Errorf("UDPPublisher: Error taking snapshot: %v", err)
		return false
	}
	if p.frame.Seq == 0 || p.frame.Seq == p.lastFrame {
		return false
	}
	p.lastFrame = p.frame.Seq
	p.sequenceNum++

	packet, err := p.pack(time.Now().UnixNano())
	if err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return false
	}

	// Error logging is handled within sender.Send.
	if err := p.sender.Send(packet); err != nil {
		return false
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	return true
}

// pack encodes the current frame into the reusable packet buffer.
func (p *UDPPublisher) pack(timestamp int64) ([]byte, error) {
	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(p.frame.Upper)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.frame.Upper)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.frame.Lower)
	}
	if err != nil {
		return nil, err
	}
	return p.packetBuffer.Bytes(), nil
}

// Close implements the io.Closer interface. It stops the publisher and
// closes the sender.
func (p *UDPPublisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.sender.Close()
}

var _ interface{ Close() error } = (*UDPPublisher)(nil)
