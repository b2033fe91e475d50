// Package resample implements a streaming resampler:
// it normalizes an arbitrary native sample rate to the model's fixed
// 16 kHz rate and slices the result into fixed-size frames, holding a
// rolling input buffer across calls so samples spanning call boundaries
// are never lost or duplicated.
package resample

import (
	"iter"
	"math"

	"github.com/nupi-ai/vad-core/internal/vaderrors"
)

// TargetSampleRate is the model's fixed input rate in Hz.
const TargetSampleRate = 16000

// Resampler converts nativeSampleRate input into TargetSampleRate frames
// of exactly targetFrameSize samples. It is not safe for concurrent use —
// each caller chunk must be processed before the next arrives.
//
// This is the batch variant with eager residue trim — each Process call
// consumes as many complete
// input windows as the accumulated buffer allows and keeps only the true
// leftover tail, rather than deferring the trim to the next call.
type Resampler struct {
	nativeRate           int
	targetFrameSize      int
	inputSamplesPerFrame int
	buf                  []float32
}

// New creates a Resampler. nativeRate and targetFrameSize must both be
// positive; upsampling (nativeRate < TargetSampleRate) is accepted but
// produces a naive box-average the same as downsampling — true
// interpolation is not required by this core.
func New(nativeRate, targetFrameSize int) (*Resampler, error) {
	if nativeRate <= 0 {
		return nil, vaderrors.NewConfigurationError("nativeRate", "must be > 0")
	}
	if targetFrameSize <= 0 {
		return nil, vaderrors.NewConfigurationError("targetFrameSize", "must be > 0")
	}
	perFrame := int(math.Ceil(float64(targetFrameSize) * float64(nativeRate) / float64(TargetSampleRate)))
	if perFrame <= 0 {
		perFrame = 1
	}
	return &Resampler{
		nativeRate:           nativeRate,
		targetFrameSize:      targetFrameSize,
		inputSamplesPerFrame: perFrame,
	}, nil
}

// InputSamplesPerFrame returns the number of native-rate input samples
// consumed to produce one output frame.
func (r *Resampler) InputSamplesPerFrame() int { return r.inputSamplesPerFrame }

// Process appends input to the rolling buffer and returns every complete
// output frame the buffer now contains. Any residue shorter than
// InputSamplesPerFrame() is retained for the next call. A zero-length
// input never produces frames.
func (r *Resampler) Process(input []float32) [][]float32 {
	if len(input) > 0 {
		r.buf = append(r.buf, input...)
	}

	var frames [][]float32
	for len(r.buf) >= r.inputSamplesPerFrame {
		window := r.buf[:r.inputSamplesPerFrame]
		frames = append(frames, r.downsampleWindow(window))
		r.buf = r.buf[r.inputSamplesPerFrame:]
	}
	// Compact the backing array so it doesn't grow unbounded across calls.
	if len(r.buf) > 0 {
		residue := make([]float32, len(r.buf))
		copy(residue, r.buf)
		r.buf = residue
	} else {
		r.buf = nil
	}
	return frames
}

// Stream is the lazy-sequence variant of Process: it yields frames as
// they become available from input, without holding them all in memory
// at once. It has identical framing semantics to Process and is finite —
// it ends once input is exhausted modulo residue. Not restartable.
func (r *Resampler) Stream(input []float32) iter.Seq[[]float32] {
	return func(yield func([]float32) bool) {
		if len(input) > 0 {
			r.buf = append(r.buf, input...)
		}
		for len(r.buf) >= r.inputSamplesPerFrame {
			frame := r.downsampleWindow(r.buf[:r.inputSamplesPerFrame])
			r.buf = r.buf[r.inputSamplesPerFrame:]
			if !yield(frame) {
				return
			}
		}
	}
}

// downsampleWindow reduces exactly inputSamplesPerFrame native-rate
// samples to targetFrameSize samples at TargetSampleRate using a box
// filter: for each output index k, walk integer input indices from
// floor((k-1)*r)+1 to floor(k*r) inclusive and average them, where
// r = nativeRate/16000.
func (r *Resampler) downsampleWindow(window []float32) []float32 {
	out := make([]float32, r.targetFrameSize)
	if r.nativeRate == TargetSampleRate {
		copy(out, window)
		return out
	}

	ratio := float64(r.nativeRate) / float64(TargetSampleRate)
	last := len(window) - 1
	for k := 0; k < r.targetFrameSize; k++ {
		var prev int
		if k == 0 {
			prev = 0
		} else {
			prev = int(math.Floor(float64(k-1)*ratio)) + 1
		}
		cur := int(math.Floor(float64(k) * ratio))
		if cur > last {
			cur = last
		}
		if prev > cur {
			prev = cur
		}
		if prev < 0 {
			prev = 0
		}

		var sum float32
		count := 0
		for idx := prev; idx <= cur; idx++ {
			sum += window[idx]
			count++
		}
		if count == 0 {
			out[k] = window[last]
		} else {
			out[k] = sum / float32(count)
		}
	}
	return out
}

// Reset discards any buffered residue, as if the Resampler were freshly
// constructed.
func (r *Resampler) Reset() {
	r.buf = nil
}
