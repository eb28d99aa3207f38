// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"sync"
	"testing"
	"time"

	"waveglow/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider serves a fixed envelope and advances Seq on demand.
type stubProvider struct {
	mu    sync.Mutex
	seq   uint64
	upper []float32
	lower []float32
	err   error
}

func newStubProvider(n int) *stubProvider {
	p := &stubProvider{upper: make([]float32, n), lower: make([]float32, n)}
	for i := range n {
		p.upper[i] = -float32(i) / float32(n)
		p.lower[i] = float32(i) / float32(n)
	}
	return p
}

func (p *stubProvider) advance() {
	p.mu.Lock()
	p.seq++
	p.mu.Unlock()
}

func (p *stubProvider) Len() int { return len(p.upper) }

func (p *stubProvider) SnapshotInto(f *Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	f.Type = FrameType
	f.Seq = p.seq
	f.Upper = append(f.Upper[:0], p.upper...)
	f.Lower = append(f.Lower[:0], p.lower...)
	f.Top = float64(p.upper[len(p.upper)-1])
	f.Bottom = float64(p.lower[len(p.lower)-1])
	f.VolumeScale = 1
	f.AmplitudeScale = 2
	return nil
}

var _ FrameProvider = (*stubProvider)(nil)

func TestNewPublisherValidation(t *testing.T) {
	_, err := NewPublisher(time.Millisecond, nil, &utils.MockTransport{})
	assert.Error(t, err)

	_, err = NewPublisher(time.Millisecond, newStubProvider(4), nil)
	assert.Error(t, err)

	p, err := NewPublisher(0, newStubProvider(4), &utils.MockTransport{})
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, p.interval)
}

func TestPublisherSkipsStaleFrames(t *testing.T) {
	provider := newStubProvider(8)
	mock := &utils.MockTransport{}
	p, err := NewPublisher(time.Hour, provider, mock)
	require.NoError(t, err)

	assert.False(t, p.publish(), "no frame rendered yet")

	provider.advance()
	assert.True(t, p.publish())
	assert.False(t, p.publish(), "same frame twice")

	provider.advance()
	assert.True(t, p.publish())
	assert.Equal(t, 2, mock.Count())

	var got Frame
	require.True(t, mock.Last(&got))
	assert.Equal(t, FrameType, got.Type)
	assert.Equal(t, uint64(2), got.Seq)
	assert.Len(t, got.Upper, 8)
	assert.Equal(t, provider.lower, got.Lower)
	assert.Equal(t, 2.0, got.AmplitudeScale)
}

func TestPublisherSnapshotError(t *testing.T) {
	provider := newStubProvider(4)
	provider.seq = 1
	provider.err = errors.New("boom")
	mock := &utils.MockTransport{}
	p, err := NewPublisher(time.Hour, provider, mock)
	require.NoError(t, err)

	assert.False(t, p.publish())
	assert.Zero(t, mock.Count())
}

func TestPublisherStartStop(t *testing.T) {
	provider := newStubProvider(4)
	mock := &utils.MockTransport{}
	p, err := NewPublisher(time.Millisecond, provider, mock)
	require.NoError(t, err)

	p.Start()
	p.Start() // no-op while running

	provider.advance()
	assert.Eventually(t, func() bool { return mock.Count() >= 1 }, time.Second, time.Millisecond)

	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())

	require.NoError(t, p.Close())
	assert.True(t, mock.Closed())
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	f := &Frame{Type: FrameType, Seq: 3, Upper: []float32{-0.1}, Lower: []float32{0.1}}
	assert.NoError(t, lt.Send(f))
	assert.NoError(t, lt.Send("other"))
	assert.NoError(t, lt.Close())
}
