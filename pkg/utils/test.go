// SPDX-License-Identifier: MIT

// Package utils holds signal generators and doubles shared by tests.
package utils

import (
	"encoding/json"
	"math"
	"sync"
)

// MockTransport records what it is sent instead of transmitting. Messages
// are stored as JSON so callers may reuse their buffers after Send.
type MockTransport struct {
	mu       sync.Mutex
	messages []json.RawMessage
	closed   bool
}

// Send stores the data for later inspection.
func (m *MockTransport) Send(data any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Count returns the number of messages sent so far.
func (m *MockTransport) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Last decodes the newest message into v. It returns false when nothing
// has been sent.
func (m *MockTransport) Last(v any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return false
	}
	return json.Unmarshal(m.messages[len(m.messages)-1], v) == nil
}

// GenerateSineWave returns size samples of a sine at frequency with the
// given peak amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return buffer
}
