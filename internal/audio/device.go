// SPDX-License-Identifier: MIT
package audio

// Device represents an audio device
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Kind describes the device direction for listings.
func (d Device) Kind() string {
	return deviceKind(d.MaxInputChannels, d.MaxOutputChannels)
}

// GetDevices initialises PortAudio, lists the host devices and shuts it
// down again. It is meant for callers that run before the engine exists.
func GetDevices() ([]Device, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	defer Terminate()

	return HostDevices()
}

func deviceKind(inputs, outputs int) string {
	switch {
	case inputs > 0 && outputs > 0:
		return "Input/Output"
	case inputs > 0:
		return "Input"
	case outputs > 0:
		return "Output"
	default:
		return ""
	}
}
