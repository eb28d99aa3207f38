// SPDX-License-Identifier: MIT
package transport

import (
	applog "waveglow/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each frame. It is the fallback sink for headless runs with no network
// transport configured.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data at debug level.
func (lt *LoggingTransport) Send(data any) error {
	switch f := data.(type) {
	case *Frame:
		applog.WithFields(applog.Fields{
			"seq":    f.Seq,
			"points": len(f.Upper),
			"top":    f.Top,
			"bottom": f.Bottom,
			"scale":  f.VolumeScale * f.AmplitudeScale,
		}).Debug("LOG_TRANSPORT: frame")
	default:
		applog.Debugf("LOG_TRANSPORT: Received (%T): %+v", data, data)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
