// SPDX-License-Identifier: MIT
package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// ErrUnsupportedFormat is returned for files that are not WAV, MP3 or Ogg Vorbis.
var ErrUnsupportedFormat = errors.New("player: unsupported audio format")

// Format names accepted by Decode.
const (
	FormatWAV = "wav"
	FormatMP3 = "mp3"
	FormatOGG = "ogg"
)

// Track is a fully decoded mono signal.
type Track struct {
	SampleRate int
	Samples    []float32 // Mono, nominally in [-1, 1].
}

// Duration returns the playing time in seconds.
func (t *Track) Duration() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(len(t.Samples)) / float64(t.SampleRate)
}

// Load decodes the file at path. The format comes from the extension, or
// from the leading bytes when the extension is not recognised.
func Load(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}

	format := formatFromExt(path)
	if format == "" {
		format = Sniff(data)
	}
	track, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("player: %s: %w", filepath.Base(path), err)
	}
	return track, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".ogg", ".oga":
		return FormatOGG
	}
	return ""
}

// Sniff guesses the format from the first bytes of a file.
func Sniff(b []byte) string {
	switch {
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WAVE":
		return FormatWAV
	case len(b) >= 4 && string(b[:4]) == "OggS":
		return FormatOGG
	case len(b) >= 3 && string(b[:3]) == "ID3":
		return FormatMP3
	case len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return ""
}

// Decode reads a whole stream of the given format and mixes it to mono.
func Decode(r io.Reader, format string) (*Track, error) {
	switch format {
	case FormatWAV:
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, err
			}
			rs = bytes.NewReader(data)
		}
		return decodeWAV(rs)
	case FormatMP3:
		return decodeMP3(r)
	case FormatOGG:
		return decodeOGG(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func decodeWAV(r io.ReadSeeker) (*Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav: invalid file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("wav: missing format")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("wav: unsupported bit depth %d", bitDepth)
	}
	full := float32(int64(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			v -= 128 // 8-bit PCM is unsigned
		}
		samples[i] = float32(v) / full
	}

	return &Track{
		SampleRate: buf.Format.SampleRate,
		Samples:    mixDown(samples, buf.Format.NumChannels),
	}, nil
}

func decodeMP3(r io.Reader) (*Track, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	// go-mp3 always yields 16-bit little-endian stereo.
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
		samples[i] = float32(v) / 32768.0
	}

	return &Track{
		SampleRate: dec.SampleRate(),
		Samples:    mixDown(samples, 2),
	}, nil
}

func decodeOGG(r io.Reader) (*Track, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ogg: %w", err)
	}
	return &Track{
		SampleRate: format.SampleRate,
		Samples:    mixDown(samples, format.Channels),
	}, nil
}

// mixDown averages interleaved frames into one channel. Mono input is
// returned as is.
func mixDown(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := range mono {
		var sum float32
		for _, s := range interleaved[i*channels : (i+1)*channels] {
			sum += s
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
