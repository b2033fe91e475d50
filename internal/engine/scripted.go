package engine

import (
	"context"
	"fmt"
)

// ScriptedModel replays a fixed sequence of speech probabilities, one per
// Process call, regardless of frame content. It is the model double the
// frame processor's scenario tests drive: the end-to-end scenarios
// are expressed as literal per-frame probability scripts.
type ScriptedModel struct {
	frameSamples int
	script       []SpeechProbabilities
	pos          int
	resets       int
}

// NewScriptedModel creates a ScriptedModel that returns script[i] on the
// i-th Process call. Calling Process past the end of script is an error —
// tests should size the script to the scenario being exercised.
func NewScriptedModel(frameSamples int, script []SpeechProbabilities) *ScriptedModel {
	return &ScriptedModel{frameSamples: frameSamples, script: script}
}

// Process returns the next scripted probability pair.
func (m *ScriptedModel) Process(_ context.Context, frame []float32) (SpeechProbabilities, error) {
	if len(frame) != m.frameSamples {
		return SpeechProbabilities{}, fmt.Errorf("scripted model: frame length %d, want %d", len(frame), m.frameSamples)
	}
	if m.pos >= len(m.script) {
		return SpeechProbabilities{}, fmt.Errorf("scripted model: script exhausted after %d frames", m.pos)
	}
	p := m.script[m.pos]
	m.pos++
	return p, nil
}

// ResetState does not rewind the script — a real model's ResetState only
// clears recurrent state, it can't un-consume audio that already arrived.
// It just counts the call so tests asserting reset idempotence and
// "model state reset on segment termination" can inspect Resets().
func (m *ScriptedModel) ResetState() error {
	m.resets++
	return nil
}

// Resets reports how many times ResetState has been called.
func (m *ScriptedModel) Resets() int { return m.resets }

// FrameSamples reports the configured frame size.
func (m *ScriptedModel) FrameSamples() int { return m.frameSamples }

// Close is a no-op.
func (m *ScriptedModel) Close() error { return nil }

// Exhausted reports whether every scripted probability has been consumed.
func (m *ScriptedModel) Exhausted() bool { return m.pos >= len(m.script) }
