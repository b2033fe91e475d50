// Package streamvad implements the StreamVAD orchestrator: it owns a
// Model, a Resampler, and a FrameProcessor, converting free-form audio
// chunks at an arbitrary sample rate into a timestamped event stream.
package streamvad

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/nupi-ai/vad-core/internal/engine"
	"github.com/nupi-ai/vad-core/internal/frameproc"
	"github.com/nupi-ai/vad-core/internal/resample"
	"github.com/nupi-ai/vad-core/internal/vaderrors"
)

// Config is the orchestrator-facing subset of the configuration
// table: frameproc.Config plus the native sample rate the caller's audio
// arrives at.
type Config struct {
	frameproc.Config
	SampleRate int
}

// Validate checks both the embedded FrameProcessor config and SampleRate.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return vaderrors.NewConfigurationError("SampleRate", "must be > 0")
	}
	return c.Config.Validate()
}

// Event mirrors frameproc.Event but adds a wall-clock timestamp computed
// from the stream's start time and the number of frames processed so
// far — the orchestrator is the layer that knows real time, the state
// machine only knows frame counts.
type Event struct {
	Kind      frameproc.EventKind
	Probs     engine.SpeechProbabilities
	Frame     []float32
	Audio     []float32
	Timestamp *timestamppb.Timestamp
}

// StreamVAD converts audio chunks into events. It is not safe for
// concurrent use: ProcessAudio must be called in submission order by a
// single goroutine.
type StreamVAD struct {
	model     engine.Model
	resampler *resample.Resampler // nil when SampleRate == engine.ExpectedSampleRate
	fp        *frameproc.FrameProcessor
	cfg       Config
	logger    *slog.Logger

	pendingSamples []float32
	frameCount     int64
	streamStart    time.Time
	paused         bool
	destroyed      bool
}

// New constructs a StreamVAD in the paused state. streamStart fixes the
// instant frame 0's timestamp is computed relative to; callers normally
// pass time.Now() but may inject a fixed time for deterministic tests.
func New(model engine.Model, cfg Config, streamStart time.Time, logger *slog.Logger) (*StreamVAD, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model.FrameSamples() != cfg.FrameSamples {
		return nil, vaderrors.NewConfigurationError("FrameSamples",
			"model and config frame sizes disagree")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "streamvad")

	fp, err := frameproc.New(model, cfg.Config, logger)
	if err != nil {
		return nil, err
	}

	var rs *resample.Resampler
	if cfg.SampleRate != engine.ExpectedSampleRate {
		rs, err = resample.New(cfg.SampleRate, cfg.FrameSamples)
		if err != nil {
			return nil, err
		}
	}

	return &StreamVAD{
		model:       model,
		resampler:   rs,
		fp:          fp,
		cfg:         cfg,
		logger:      logger,
		streamStart: streamStart,
		paused:      true,
	}, nil
}

// Start enables processing, delegating to FrameProcessor.Resume.
func (s *StreamVAD) Start() error {
	if s.destroyed {
		return vaderrors.ErrDestroyed
	}
	if err := s.fp.Resume(); err != nil {
		return err
	}
	s.paused = false
	s.logger.Info("started")
	return nil
}

// Pause disables processing and returns any terminal event the
// in-progress segment produces (nil if none).
func (s *StreamVAD) Pause() (*Event, error) {
	if s.destroyed {
		return nil, vaderrors.ErrDestroyed
	}
	s.paused = true
	ev := s.fp.Pause()
	s.logger.Info("paused")
	return s.stamp(ev), nil
}

// ProcessAudio feeds chunk (native-rate samples in [-1,1]) through the
// resampler if needed, accumulates it into pendingSamples, and processes
// every complete frame that results, in order. It is a no-op while
// paused or destroyed (destroyed additionally reports ErrDestroyed).
//
// If the model returns an error on a frame, ProcessAudio wraps it as a
// ModelInferenceError and returns immediately: prior events from this
// same call are still returned, the in-progress segment is preserved,
// and only the offending frame is lost.
func (s *StreamVAD) ProcessAudio(ctx context.Context, chunk []float32) ([]Event, error) {
	if s.destroyed {
		return nil, vaderrors.ErrDestroyed
	}
	if s.paused {
		return nil, nil
	}

	var native []float32
	if s.resampler != nil {
		for _, frame := range s.resampler.Process(chunk) {
			native = append(native, frame...)
		}
	} else {
		native = chunk
	}
	s.pendingSamples = append(s.pendingSamples, native...)

	var events []Event
	for len(s.pendingSamples) >= s.cfg.FrameSamples {
		frame := s.pendingSamples[:s.cfg.FrameSamples]
		s.pendingSamples = s.pendingSamples[s.cfg.FrameSamples:]

		fpEvents, err := s.fp.Process(ctx, frame)
		if err != nil {
			s.logger.Error("model inference failed", "error", err)
			return events, vaderrors.NewModelInferenceError(err)
		}
		s.frameCount++
		for _, e := range fpEvents {
			events = append(events, *s.stamp(&e))
		}
	}
	return events, nil
}

func (s *StreamVAD) stamp(ev *frameproc.Event) *Event {
	if ev == nil {
		return nil
	}
	ts := timestamppb.New(s.streamStart.Add(time.Duration(s.frameCount) * s.frameDuration()))
	return &Event{
		Kind:      ev.Kind,
		Probs:     ev.Probs,
		Frame:     ev.Frame,
		Audio:     ev.Audio,
		Timestamp: ts,
	}
}

func (s *StreamVAD) frameDuration() time.Duration {
	seconds := float64(s.cfg.FrameSamples) / float64(engine.ExpectedSampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// Flush handles a short, sub-frame residue: if 0 < len(pendingSamples) <
// frameSamples, it zero-pads to frameSamples and processes that final
// frame (a deliberate approximation — the padded samples are still
// counted as a regular frame by the model), then calls EndSegment and
// clears the buffer.
func (s *StreamVAD) Flush(ctx context.Context) ([]Event, error) {
	if s.destroyed {
		return nil, vaderrors.ErrDestroyed
	}
	if s.paused {
		// Pause already finalized any in-progress segment; residue from
		// before the pause has nothing left to flush into.
		s.pendingSamples = nil
		return nil, nil
	}

	var events []Event
	if n := len(s.pendingSamples); n > 0 && n < s.cfg.FrameSamples {
		s.logger.Warn("flushing partial frame with zero padding", "residue_samples", n)
		padded := make([]float32, s.cfg.FrameSamples)
		copy(padded, s.pendingSamples)
		fpEvents, err := s.fp.Process(ctx, padded)
		if err != nil {
			return events, vaderrors.NewModelInferenceError(err)
		}
		s.frameCount++
		for _, e := range fpEvents {
			events = append(events, *s.stamp(&e))
		}
	}
	s.pendingSamples = nil

	if ev := s.fp.EndSegment(); ev != nil {
		events = append(events, *s.stamp(ev))
	}
	return events, nil
}

// Reset clears pendingSamples and the resampler's residue, and resets the
// model's recurrent state, without changing the paused/destroyed state.
func (s *StreamVAD) Reset() error {
	if s.destroyed {
		return vaderrors.ErrDestroyed
	}
	s.pendingSamples = nil
	s.frameCount = 0
	if s.resampler != nil {
		s.resampler.Reset()
	}
	return s.model.ResetState()
}

// Destroy pauses, resets, and releases the model's resources. Safe to
// call more than once. After Destroy, every other method returns
// ErrDestroyed.
func (s *StreamVAD) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.paused = true
	s.fp.Pause()
	s.pendingSamples = nil
	if s.resampler != nil {
		s.resampler.Reset()
	}
	resetErr := s.model.ResetState()
	closeErr := s.model.Close()
	s.destroyed = true
	s.logger.Info("destroyed")
	if closeErr != nil {
		return closeErr
	}
	return resetErr
}
