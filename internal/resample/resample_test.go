package resample

import "testing"

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(0, 512); err == nil {
		t.Fatal("expected error for nativeRate=0")
	}
	if _, err := New(16000, 0); err == nil {
		t.Fatal("expected error for targetFrameSize=0")
	}
}

func TestIdentityPassthrough(t *testing.T) {
	r, err := New(16000, 512)
	if err != nil {
		t.Fatal(err)
	}
	if r.InputSamplesPerFrame() != 512 {
		t.Fatalf("InputSamplesPerFrame = %d, want 512", r.InputSamplesPerFrame())
	}

	input := make([]float32, 512)
	for i := range input {
		input[i] = float32(i) / 512
	}
	frames := r.Process(input)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	for i, v := range frames[0] {
		if v != input[i] {
			t.Fatalf("frame[%d] = %v, want %v (identity passthrough)", i, v, input[i])
		}
	}
}

func TestResidueCarriesAcrossCalls(t *testing.T) {
	r, err := New(16000, 512)
	if err != nil {
		t.Fatal(err)
	}

	// First call: 300 samples, not enough for a frame.
	frames := r.Process(make([]float32, 300))
	if len(frames) != 0 {
		t.Fatalf("expected 0 frames from partial input, got %d", len(frames))
	}

	// Second call: 300 more samples — total 600 ≥ 512, one frame emitted,
	// 88 samples retained.
	frames = r.Process(make([]float32, 300))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame after crossing the boundary, got %d", len(frames))
	}
	if len(r.buf) != 88 {
		t.Fatalf("residue = %d samples, want 88", len(r.buf))
	}
}

func TestEmptyInputYieldsNoFrames(t *testing.T) {
	r, err := New(16000, 512)
	if err != nil {
		t.Fatal(err)
	}
	if frames := r.Process(nil); len(frames) != 0 {
		t.Fatalf("expected 0 frames for nil input, got %d", len(frames))
	}
	if frames := r.Process([]float32{}); len(frames) != 0 {
		t.Fatalf("expected 0 frames for empty input, got %d", len(frames))
	}
}

func TestDownsample48kTo16k(t *testing.T) {
	r, err := New(48000, 512)
	if err != nil {
		t.Fatal(err)
	}
	// 3:1 ratio — exactly one output frame per 1536 input samples.
	if got := r.InputSamplesPerFrame(); got != 1536 {
		t.Fatalf("InputSamplesPerFrame = %d, want 1536", got)
	}

	input := make([]float32, 1536)
	for i := range input {
		input[i] = 1.0 // constant signal averages to itself regardless of window
	}
	frames := r.Process(input)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if len(frames[0]) != 512 {
		t.Fatalf("frame length = %d, want 512", len(frames[0]))
	}
	for i, v := range frames[0] {
		if v != 1.0 {
			t.Fatalf("frame[%d] = %v, want 1.0 for constant input", i, v)
		}
	}
}

// TestChunkedFramingMatchesOneShot verifies that total frames emitted,
// over a long prefix fed in varying chunk sizes, matches the frame count
// that would result from feeding all the input in one shot.
func TestChunkedFramingMatchesOneShot(t *testing.T) {
	const nativeRate = 48000
	const frameSize = 512
	const totalSamples = 48000 * 3 // 3 seconds

	oneShot, err := New(nativeRate, frameSize)
	if err != nil {
		t.Fatal(err)
	}
	wantFrames := len(oneShot.Process(make([]float32, totalSamples)))

	chunked, err := New(nativeRate, frameSize)
	if err != nil {
		t.Fatal(err)
	}
	chunkSizes := []int{160, 800, 37, 4000, 1}
	remaining := totalSamples
	gotFrames := 0
	i := 0
	for remaining > 0 {
		size := chunkSizes[i%len(chunkSizes)]
		if size > remaining {
			size = remaining
		}
		gotFrames += len(chunked.Process(make([]float32, size)))
		remaining -= size
		i++
	}

	if gotFrames != wantFrames {
		t.Fatalf("chunked framing produced %d frames, want %d (one-shot)", gotFrames, wantFrames)
	}
}

func TestResetDiscardsResidue(t *testing.T) {
	r, err := New(16000, 512)
	if err != nil {
		t.Fatal(err)
	}
	r.Process(make([]float32, 100))
	r.Reset()
	if len(r.buf) != 0 {
		t.Fatalf("expected empty buffer after Reset, got %d samples", len(r.buf))
	}
}

func TestStreamMatchesProcess(t *testing.T) {
	rp, err := New(48000, 512)
	if err != nil {
		t.Fatal(err)
	}
	rs, err := New(48000, 512)
	if err != nil {
		t.Fatal(err)
	}

	input := make([]float32, 1536*4+100)
	for i := range input {
		input[i] = float32(i%7) / 7
	}

	want := rp.Process(input)

	var got [][]float32
	for frame := range rs.Stream(input) {
		got = append(got, frame)
	}

	if len(got) != len(want) {
		t.Fatalf("Stream produced %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("frame %d sample %d = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}
