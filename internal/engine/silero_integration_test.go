//go:build silero

// IMPORTANT: Tests in this file use os.Chdir and MUST NOT use t.Parallel().
// The ORT library resolver depends on working directory, so tests must run
// sequentially to avoid race conditions.

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// projectRoot returns the absolute path to the project root.
func projectRoot(t *testing.T) string {
	t.Helper()
	// Tests in internal/engine/ → project root is 2 dirs up.
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	root := filepath.Join(dir, "..", "..")
	root, err = filepath.Abs(root)
	if err != nil {
		t.Fatalf("filepath.Abs: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Skipf("cannot locate project root (expected go.mod at %s)", root)
	}
	return root
}

// withProjectRootCwd temporarily changes working directory to the project root.
// ORT library resolver uses os.Getwd(), so tests must run from project root.
// The original directory is restored via t.Cleanup. Tests using this must
// NOT run in parallel.
func withProjectRootCwd(t *testing.T) {
	t.Helper()
	root := projectRoot(t)

	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("os.Chdir(%s): %v", root, err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

// skipWithoutORT skips the test if the ORT library is not available.
func skipWithoutORT(t *testing.T) {
	t.Helper()
	withProjectRootCwd(t)
	// Enable CWD-based library lookup for tests.
	// t.Setenv automatically restores the original value on test cleanup.
	t.Setenv("VADCORE_DEV_MODE", "1")
	if _, err := resolveORTLibPath(); err != nil {
		t.Skipf("ONNX Runtime library not found — run 'make download-ort': %v", err)
	}
}

func TestSileroEngine_V5_Silence_Integration(t *testing.T) {
	skipWithoutORT(t)

	eng, err := NewSileroEngine(SileroV5, 512)
	if err != nil {
		t.Fatalf("NewSileroEngine: %v", err)
	}
	defer eng.Close()

	silence := make([]float32, 512)
	probs, err := eng.Process(context.Background(), silence)
	if err != nil {
		t.Fatalf("Process silence: %v", err)
	}
	if probs.IsSpeech > 0.5 {
		t.Errorf("silence IsSpeech = %v, expected < 0.5", probs.IsSpeech)
	}
}

func TestSileroEngine_V5_Reset_Integration(t *testing.T) {
	skipWithoutORT(t)

	eng, err := NewSileroEngine(SileroV5, 512)
	if err != nil {
		t.Fatalf("NewSileroEngine: %v", err)
	}
	defer eng.Close()

	frame := make([]float32, 512)
	for i := 0; i < 10; i++ {
		if _, err := eng.Process(context.Background(), frame); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}

	if err := eng.ResetState(); err != nil {
		t.Fatalf("ResetState: %v", err)
	}

	probs, err := eng.Process(context.Background(), frame)
	if err != nil {
		t.Fatalf("Process after reset: %v", err)
	}
	if probs.IsSpeech < 0 || probs.IsSpeech > 1 {
		t.Errorf("IsSpeech after reset = %v, expected [0, 1]", probs.IsSpeech)
	}
}

func TestSileroEngine_Legacy_FrameSizes_Integration(t *testing.T) {
	skipWithoutORT(t)

	for _, size := range []int{512, 1024, 1536} {
		eng, err := NewSileroEngine(SileroLegacy, size)
		if err != nil {
			t.Fatalf("NewSileroEngine(legacy, %d): %v", size, err)
		}
		frame := make([]float32, size)
		probs, err := eng.Process(context.Background(), frame)
		if err != nil {
			t.Fatalf("Process(legacy, %d): %v", size, err)
		}
		if probs.IsSpeech < 0 || probs.IsSpeech > 1 {
			t.Errorf("legacy[%d] IsSpeech = %v, expected [0,1]", size, probs.IsSpeech)
		}
		eng.Close()
	}
}

func TestSileroEngine_WrongFrameLength(t *testing.T) {
	skipWithoutORT(t)

	eng, err := NewSileroEngine(SileroV5, 512)
	if err != nil {
		t.Fatalf("NewSileroEngine: %v", err)
	}
	defer eng.Close()

	_, err = eng.Process(context.Background(), make([]float32, 256))
	if err == nil {
		t.Fatal("expected error for wrong frame length, got nil")
	}
}

func TestSileroEngine_InferenceLatency(t *testing.T) {
	// Inference must stay well under one frame period (32ms) on a single
	// CPU thread, or real-time streaming falls behind.
	skipWithoutORT(t)

	eng, err := NewSileroEngine(SileroV5, 512)
	if err != nil {
		t.Fatalf("NewSileroEngine: %v", err)
	}
	defer eng.Close()

	warmup := make([]float32, 512)
	if _, err := eng.Process(context.Background(), warmup); err != nil {
		t.Fatalf("warmup Process: %v", err)
	}

	const iterations = 50
	frame := make([]float32, 512)
	var totalDuration time.Duration

	for i := 0; i < iterations; i++ {
		start := time.Now()
		if _, err := eng.Process(context.Background(), frame); err != nil {
			t.Fatalf("Process iteration %d: %v", i, err)
		}
		totalDuration += time.Since(start)
	}

	avgMs := float64(totalDuration.Microseconds()) / float64(iterations) / 1000.0
	t.Logf("average inference latency: %.3f ms (over %d iterations)", avgMs, iterations)

	if avgMs > 1.0 {
		t.Errorf("average inference latency %.3f ms exceeds 1ms budget", avgMs)
	}
}

func TestSileroEngine_DoubleClose(t *testing.T) {
	skipWithoutORT(t)

	eng, err := NewSileroEngine(SileroV5, 512)
	if err != nil {
		t.Fatalf("NewSileroEngine: %v", err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
