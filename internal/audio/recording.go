// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	applog "waveglow/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// recordBitDepth is the PCM depth written by StartRecording.
const recordBitDepth = 16

// StartRecording writes the captured mono signal, before the gate, to
// filename as 16-bit PCM WAV until StopRecording.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.config.SampleRate),
		recordBitDepth, 1, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(e.config.SampleRate),
		},
		Data:           make([]int, e.config.FramesPerBuffer),
		SourceBitDepth: recordBitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("Audio: Recording to %s", filename)

	return nil
}

func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// Close stops the input stream, then finishes any recording.
func (e *Engine) Close() error {
	if err := e.StopInputStream(); err != nil {
		return err
	}

	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	return nil
}
