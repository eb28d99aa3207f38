// SPDX-License-Identifier: MIT
package transport

// Transport defines a generic interface for sending envelope frames or events.
// Implementations should be thread-safe and must not retain data after Send
// returns.
type Transport interface {
	Send(data any) error
	Close() error
}

// Frame is one published snapshot of the envelope.
type Frame struct {
	Type           string    `json:"type"`
	Seq            uint64    `json:"seq"`
	Upper          []float32 `json:"upper"`
	Lower          []float32 `json:"lower"`
	Top            float64   `json:"top"`    // Most negative upper value.
	Bottom         float64   `json:"bottom"` // Most positive lower value.
	VolumeScale    float64   `json:"volumeScale"`
	AmplitudeScale float64   `json:"amplitudeScale"`
}

// FrameType is the Type of every envelope Frame.
const FrameType = "envelope"

// FrameProvider hands out copies of the latest envelope. SnapshotInto
// resizes f.Upper and f.Lower as needed and reuses their storage.
type FrameProvider interface {
	Len() int
	SnapshotInto(f *Frame) error
}
