// SPDX-License-Identifier: MIT
/*
Package player decodes an audio file and plays it through oto while
feeding the same samples to the visualiser.

The samples handed to the sink are scaled by the playback volume, the way
an analyser after a volume control would see them. The visualiser divides
that back out, so the drawn shape does not shrink when the user turns the
volume down.
*/
package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	applog "waveglow/internal/log"

	"github.com/ebitengine/oto/v3"
)

// SampleSink receives mono samples as they are played.
type SampleSink interface {
	Write(samples []float32)
}

// Player streams a Track to the audio device.
type Player struct {
	track *Track
	sink  SampleSink
	loop  bool

	mu      sync.Mutex // Guards pos and scratch; oto calls Read on its own goroutine.
	pos     int
	scratch []float32
	mixed   []float32

	volume   atomic.Uint64 // float64 bits
	doneOnce sync.Once
	done     chan struct{}

	ctx *oto.Context
	out *oto.Player
}

// New prepares playback of track into sink. Nothing is played until Play.
func New(track *Track, sink SampleSink, loop bool) (*Player, error) {
	if track == nil || len(track.Samples) == 0 {
		return nil, fmt.Errorf("player: empty track")
	}
	if track.SampleRate <= 0 {
		return nil, fmt.Errorf("player: invalid sample rate %d", track.SampleRate)
	}

	p := &Player{
		track: track,
		sink:  sink,
		loop:  loop,
		done:  make(chan struct{}),
	}
	p.volume.Store(math.Float64bits(1))
	return p, nil
}

// Play opens the output device and starts playback.
func (p *Player) Play() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   p.track.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("player: open output: %w", err)
	}
	<-ready

	p.ctx = ctx
	p.out = ctx.NewPlayer(p)
	p.out.SetVolume(p.Volume())
	p.out.Play()

	applog.Infof("Player: Playing %.1fs at %d Hz", p.track.Duration(), p.track.SampleRate)
	return nil
}

// Volume implements the visualiser's VolumeSource.
func (p *Player) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// SetVolume sets the playback volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	v = math.Min(math.Max(v, 0), 1)
	p.volume.Store(math.Float64bits(v))
	if p.out != nil {
		p.out.SetVolume(v)
	}
}

// Done is closed when a non-looping track has been played to the end.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Position returns how far into the track playback is.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(float64(p.pos) / float64(p.track.SampleRate) * float64(time.Second))
}

// Read implements io.Reader for oto: little-endian float32 mono.
func (p *Player) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	samples := p.next(len(b) / 4)
	if len(samples) == 0 {
		return 0, io.EOF
	}
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(s))
	}
	return 4 * len(samples), nil
}

// Feed advances playback by n samples without audio output, sending them
// to the sink. It returns how many samples were consumed. Offline
// rendering uses it to step through a file at a fixed frame rate.
func (p *Player) Feed(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.next(n))
}

// next returns up to n samples from the current position, wrapping when
// looping, and hands them to the sink. The result aliases scratch.
func (p *Player) next(n int) []float32 {
	if cap(p.scratch) < n {
		p.scratch = make([]float32, n)
		p.mixed = make([]float32, n)
	}
	out := p.scratch[:0]

	for len(out) < n {
		if p.pos >= len(p.track.Samples) {
			if !p.loop {
				p.doneOnce.Do(func() { close(p.done) })
				break
			}
			p.pos = 0
		}
		k := min(n-len(out), len(p.track.Samples)-p.pos)
		out = append(out, p.track.Samples[p.pos:p.pos+k]...)
		p.pos += k
	}

	if p.sink != nil && len(out) > 0 {
		vol := float32(p.Volume())
		mixed := p.mixed[:len(out)]
		for i, s := range out {
			mixed[i] = s * vol
		}
		p.sink.Write(mixed)
	}
	return out
}

// Close stops playback.
func (p *Player) Close() error {
	if p.out != nil {
		if err := p.out.Close(); err != nil {
			return fmt.Errorf("player: close: %w", err)
		}
		p.out = nil
	}
	return nil
}
