package engine

import "context"

// StubToggleInterval is the number of frames after which the stub model
// toggles between speech and silence.
const StubToggleInterval = 50

// StubConfidence is the fixed isSpeech value the stub model alternates
// between 1-StubConfidence and StubConfidence.
const StubConfidence float32 = 0.9

// StubFrameSamples is the frame size the stub model expects. It does not
// inspect frame content, so this is only used to satisfy FrameSamples().
const StubFrameSamples = 512

// StubModel returns deterministic speech probabilities by alternating
// between speech and silence every StubToggleInterval frames. It never
// inspects the frame content — useful for exercising StreamVAD and the
// CLI without a real ONNX Runtime build.
type StubModel struct {
	counter  int
	speaking bool
}

// NewStubModel creates a StubModel starting in silence state.
func NewStubModel() *StubModel {
	return &StubModel{}
}

// Process ignores the frame and returns a deterministic probability pair
// based on an internal counter that toggles every StubToggleInterval calls.
func (m *StubModel) Process(_ context.Context, _ []float32) (SpeechProbabilities, error) {
	m.counter++
	if m.counter >= StubToggleInterval {
		m.counter = 0
		m.speaking = !m.speaking
	}
	if m.speaking {
		return SpeechProbabilities{IsSpeech: StubConfidence, NotSpeech: 1 - StubConfidence}, nil
	}
	return SpeechProbabilities{IsSpeech: 1 - StubConfidence, NotSpeech: StubConfidence}, nil
}

// ResetState returns the stub to its initial state (silence, counter zero).
func (m *StubModel) ResetState() error {
	m.counter = 0
	m.speaking = false
	return nil
}

// FrameSamples reports the stub's nominal frame size.
func (m *StubModel) FrameSamples() int { return StubFrameSamples }

// Close is a no-op for the stub model.
func (m *StubModel) Close() error { return nil }
