// Package wavutil is a WAV encode/decode helper: it is peripheral to the
// VAD core but crosses the boundary whenever a caller wants to inspect or
// feed back a SpeechEnd segment as a standalone file.
package wavutil

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth    = 16
	audioFormat = 1 // PCM
	maxInt16    = 32767
)

// EncodeWAV renders audio (float32 samples in [-1, +1]) as a 16-bit PCM
// mono WAV file at sampleRate, clamping out-of-range samples and scaling
// by 32767.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavutil: sampleRate must be > 0, got %d", sampleRate)
	}

	intData := make([]int, len(samples))
	for i, s := range samples {
		intData[i] = int(clampSample(s) * maxInt16)
	}

	buf := &audio.IntBuffer{
		Data:           intData,
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}

	var out seekableBuffer
	enc := wav.NewEncoder(&out, sampleRate, bitDepth, 1, audioFormat)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wavutil: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wavutil: close encoder: %w", err)
	}
	return out.buf, nil
}

// seekableBuffer is an in-memory io.WriteSeeker, since wav.NewEncoder needs
// to seek back and patch chunk-size fields after all frames are written.
type seekableBuffer struct {
	buf []byte
	pos int
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = int64(s.pos) + offset
	case io.SeekEnd:
		newPos = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("wavutil: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("wavutil: negative seek position")
	}
	s.pos = int(newPos)
	return newPos, nil
}

func clampSample(s float32) float32 {
	if math.IsNaN(float64(s)) {
		return 0
	}
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// DecodeWAV reads a PCM WAV file and returns its samples as float32 in
// [-1, +1] alongside the file's native sample rate. Multi-channel input
// is averaged down to mono, since the core only consumes a single
// channel.
func DecodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wavutil: not a valid WAV file")
	}
	dec.ReadInfo()
	format := dec.Format()
	if format == nil {
		return nil, 0, fmt.Errorf("wavutil: missing format chunk")
	}
	sampleRate := int(format.SampleRate)
	channels := int(format.NumChannels)
	if channels <= 0 {
		channels = 1
	}

	full, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavutil: decode: %w", err)
	}

	frames := len(full.Data) / channels
	samples := make([]float32, frames)
	shift := uint(full.SourceBitDepth) - 1
	scale := float32(int(1) << shift)
	if scale == 0 {
		scale = maxInt16
	}
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			sum += full.Data[i*channels+ch]
		}
		samples[i] = float32(sum) / float32(channels) / scale
	}
	return samples, sampleRate, nil
}
