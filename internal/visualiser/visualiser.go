// SPDX-License-Identifier: MIT
/*
Package visualiser ties the envelope filter and the frame compositor to
their inputs and produces one frame per tick.

A frame reads the newest samples from a SampleProvider, advances the
envelope, computes the volume and amplitude factors and paints. The
envelope and the drawing surface belong to whichever goroutine calls
Frame; publishers only ever see a copy taken at the end of each frame.

Thread Safety:
- Frame, Resize and View serialise on the draw lock
- SnapshotInto and EnvelopeInto read the published copy under a RWMutex
- Sources are called from the frame goroutine only
*/
package visualiser

import (
	"fmt"
	"math"
	"sync"

	"waveglow/internal/compositor"
	"waveglow/internal/envelope"
	applog "waveglow/internal/log"
	"waveglow/internal/transport"
)

// SampleProvider fills dst with the newest len(dst) time-domain samples,
// oldest first, each nominally in [-1, 1].
type SampleProvider interface {
	Latest(dst []float32)
}

// VolumeSource reports the current playback volume in [0, 1].
type VolumeSource interface {
	Volume() float64
}

// AmplitudeSource reports the user amplitude factor.
type AmplitudeSource interface {
	Scale() float64
}

// Options configures a Visualiser.
type Options struct {
	DataPoints      int     // Samples per frame.
	Rise            float64 // Envelope attack rate.
	Fall            float64 // Envelope decay rate.
	VolumeThreshold float64 // Volumes at or below this are not normalised.
}

// DefaultOptions returns 1024 points with rates 0.4 and 0.2.
func DefaultOptions() Options {
	return Options{
		DataPoints:      1024,
		Rise:            envelope.DefaultRise,
		Fall:            envelope.DefaultFall,
		VolumeThreshold: compositor.DefaultVolumeThreshold,
	}
}

// Visualiser owns the envelope state and the compositor for one surface.
type Visualiser struct {
	filter    *envelope.Filter
	comp      *compositor.Compositor
	samples   []float32
	provider  SampleProvider
	volume    VolumeSource
	amplitude AmplitudeSource
	threshold float64

	drawMu sync.Mutex

	snapMu         sync.RWMutex
	upper          []float32
	lower          []float32
	top            float64
	bottom         float64
	volumeScale    float64
	amplitudeScale float64
	frames         uint64
}

// New builds a visualiser that reads from provider and paints on r. A nil
// volume source means unity volume; a nil amplitude source means a factor
// of 1.
func New(opts Options, provider SampleProvider, volume VolumeSource, amplitude AmplitudeSource, r compositor.Renderer) (*Visualiser, error) {
	if provider == nil {
		return nil, fmt.Errorf("visualiser: sample provider cannot be nil")
	}
	if r == nil {
		return nil, fmt.Errorf("visualiser: renderer cannot be nil")
	}

	filter, err := envelope.New(opts.DataPoints, opts.Rise, opts.Fall)
	if err != nil {
		return nil, fmt.Errorf("visualiser: %w", err)
	}

	if volume == nil {
		volume = FixedVolume(1)
	}
	if amplitude == nil {
		amplitude = FixedAmplitude(1)
	}

	n := opts.DataPoints
	return &Visualiser{
		filter:         filter,
		comp:           compositor.New(r),
		samples:        make([]float32, n),
		provider:       provider,
		volume:         volume,
		amplitude:      amplitude,
		threshold:      opts.VolumeThreshold,
		upper:          make([]float32, n),
		lower:          make([]float32, n),
		volumeScale:    1,
		amplitudeScale: 1,
	}, nil
}

// Len returns the number of envelope points.
func (v *Visualiser) Len() int {
	return v.filter.Len()
}

// Frame renders one frame. It is called once per display refresh.
func (v *Visualiser) Frame() error {
	v.drawMu.Lock()
	defer v.drawMu.Unlock()

	v.provider.Latest(v.samples)
	if err := v.filter.Update(v.samples); err != nil {
		return err
	}

	volumeScale := compositor.VolumeScale(v.volume.Volume(), v.threshold)
	amplitudeScale := v.amplitude.Scale()

	v.comp.Paint(v.filter.Upper, v.filter.Lower, volumeScale, amplitudeScale)
	v.publish(volumeScale, amplitudeScale)
	return nil
}

// publish copies the envelope for readers on other goroutines.
func (v *Visualiser) publish(volumeScale, amplitudeScale float64) {
	top, bottom := v.filter.Peaks()

	v.snapMu.Lock()
	for i, u := range v.filter.Upper {
		v.upper[i] = float32(u)
	}
	for i, l := range v.filter.Lower {
		v.lower[i] = float32(l)
	}
	v.top, v.bottom = top, bottom
	v.volumeScale, v.amplitudeScale = volumeScale, amplitudeScale
	v.frames++
	v.snapMu.Unlock()
}

// Resize changes the surface size and clears it. The envelope is kept.
func (v *Visualiser) Resize(width, height int) {
	v.drawMu.Lock()
	defer v.drawMu.Unlock()

	if w, h := v.comp.Renderer().Size(); w == width && h == height {
		return
	}
	v.comp.Resize(width, height)
	applog.Debugf("Visualiser: Resized to %dx%d", width, height)
}

// Reset zeroes the envelope so the next frame starts from a flat line.
func (v *Visualiser) Reset() {
	v.drawMu.Lock()
	v.filter.Reset()
	v.drawMu.Unlock()
}

// View runs fn with exclusive access to the renderer, for reading pixels
// between frames.
func (v *Visualiser) View(fn func(r compositor.Renderer)) {
	v.drawMu.Lock()
	defer v.drawMu.Unlock()
	fn(v.comp.Renderer())
}

// Frames returns the number of frames rendered.
func (v *Visualiser) Frames() uint64 {
	v.snapMu.RLock()
	defer v.snapMu.RUnlock()
	return v.frames
}

// EnvelopeInto copies the envelope of the last frame into upper and lower,
// which must both have Len elements.
func (v *Visualiser) EnvelopeInto(upper, lower []float32) error {
	n := v.Len()
	if len(upper) != n || len(lower) != n {
		return fmt.Errorf("%w: got %d/%d, want %d", envelope.ErrLengthMismatch, len(upper), len(lower), n)
	}

	v.snapMu.RLock()
	copy(upper, v.upper)
	copy(lower, v.lower)
	v.snapMu.RUnlock()
	return nil
}

// SnapshotInto implements transport.FrameProvider. Seq is the frame
// number, 0 before the first frame.
func (v *Visualiser) SnapshotInto(f *transport.Frame) error {
	n := v.Len()
	if cap(f.Upper) < n {
		f.Upper = make([]float32, n)
	}
	if cap(f.Lower) < n {
		f.Lower = make([]float32, n)
	}
	f.Upper = f.Upper[:n]
	f.Lower = f.Lower[:n]

	v.snapMu.RLock()
	defer v.snapMu.RUnlock()

	copy(f.Upper, v.upper)
	copy(f.Lower, v.lower)
	f.Type = transport.FrameType
	f.Seq = v.frames
	f.Top = v.top
	f.Bottom = v.bottom
	f.VolumeScale = v.volumeScale
	f.AmplitudeScale = v.amplitudeScale
	return nil
}

var _ transport.FrameProvider = (*Visualiser)(nil)

// Extent returns the largest absolute envelope value of the last frame.
func (v *Visualiser) Extent() float64 {
	v.snapMu.RLock()
	defer v.snapMu.RUnlock()
	return math.Max(-v.top, v.bottom)
}
