package engine

import (
	"context"
	"testing"
)

func TestStubModelAlternatesSpeechSilence(t *testing.T) {
	m := NewStubModel()
	frame := make([]float32, StubFrameSamples)

	// First StubToggleInterval-1 calls should be silence (counter increments
	// before check, so the toggle fires on call #StubToggleInterval).
	for i := 0; i < StubToggleInterval-1; i++ {
		p, err := m.Process(context.Background(), frame)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if p.IsSpeech >= 0.5 {
			t.Fatalf("frame %d: expected silence, got IsSpeech=%v", i, p.IsSpeech)
		}
	}

	// The StubToggleInterval-th call toggles to speech.
	p, err := m.Process(context.Background(), frame)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsSpeech < 0.5 {
		t.Fatal("expected speech after toggle")
	}

	// Continue for another full interval to reach silence again.
	for i := 1; i < StubToggleInterval; i++ {
		m.Process(context.Background(), frame)
	}
	p, err = m.Process(context.Background(), frame)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsSpeech >= 0.5 {
		t.Fatal("expected silence after second toggle")
	}
}

func TestStubModelResetState(t *testing.T) {
	m := NewStubModel()
	frame := make([]float32, StubFrameSamples)

	for i := 0; i <= StubToggleInterval; i++ {
		m.Process(context.Background(), frame)
	}
	p, _ := m.Process(context.Background(), frame)
	if p.IsSpeech < 0.5 {
		t.Fatal("expected speech before reset")
	}

	if err := m.ResetState(); err != nil {
		t.Fatal(err)
	}
	p, _ = m.Process(context.Background(), frame)
	if p.IsSpeech >= 0.5 {
		t.Fatal("expected silence after reset")
	}
}

func TestStubModelProbabilitiesSumToOne(t *testing.T) {
	m := NewStubModel()
	frame := make([]float32, StubFrameSamples)
	p, _ := m.Process(context.Background(), frame)
	if got := p.IsSpeech + p.NotSpeech; got < 0.999 || got > 1.001 {
		t.Fatalf("IsSpeech+NotSpeech = %v, want ~1.0", got)
	}
}

func TestStubModelFrameSamples(t *testing.T) {
	m := NewStubModel()
	if m.FrameSamples() != StubFrameSamples {
		t.Fatalf("FrameSamples() = %d, want %d", m.FrameSamples(), StubFrameSamples)
	}
}
