// Package engine wraps the external Silero speech-probability model behind
// a small, stateful interface. The model itself is a black-box tensor
// graph — this package only knows its input/output shapes.
package engine

import "context"

// ExpectedSampleRate is the sample rate, in Hz, every Model in this package
// requires its input frames to be resampled to before inference.
const ExpectedSampleRate = 16000

// SpeechProbabilities is the per-frame output of a Model: a pair of scores
// in [0,1]. Callers drive the frame processor off IsSpeech only; NotSpeech
// is carried through opaquely.
type SpeechProbabilities struct {
	IsSpeech  float32
	NotSpeech float32
}

// SileroVariant selects which Silero VAD model graph a native engine loads.
// Declared here (not in silero.go) so it resolves identically whether or
// not the binary is built with -tags silero: NewNativeModel's signature
// below needs it even in the stub build.
type SileroVariant int

const (
	// SileroV5 is the combined-state-tensor model; it accepts exactly
	// 512-sample frames at 16kHz.
	SileroV5 SileroVariant = iota
	// SileroLegacy is the split h/c-state model (v3/v4); it accepts
	// 512, 1024, or 1536-sample frames at 16kHz.
	SileroLegacy
)

func (v SileroVariant) String() string {
	switch v {
	case SileroV5:
		return "v5"
	case SileroLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Model is the external neural model the frame processor consumes one
// frame at a time. Implementations hold recurrent state across calls:
// Process must be deterministic given (prior state, frame) and mutates
// that state as a side effect.
type Model interface {
	// Process runs inference on exactly FrameSamples() float32 samples in
	// [-1, 1] at 16 kHz and returns the speech probability pair.
	Process(ctx context.Context, frame []float32) (SpeechProbabilities, error)

	// ResetState restores inference state to t=0 (as if freshly constructed).
	ResetState() error

	// FrameSamples is the exact frame length this model requires.
	FrameSamples() int

	// Close releases model resources (tensors, session). Safe to call once.
	Close() error
}
