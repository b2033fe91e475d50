// Package frameproc implements the frame-based hysteresis state machine
// that is the sole subject of this package: it turns noisy
// per-frame speech probabilities into clean segment boundaries, with
// pre-roll padding, end-of-speech redemption, and minimum-duration
// filtering.
package frameproc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nupi-ai/vad-core/internal/engine"
)

// state is one of the five states a FrameProcessor can be in.
type state int

const (
	stateIdle state = iota
	stateSilence
	stateSpeaking
	stateSpeakingConfirmed
	stateRedemption
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateSilence:
		return "Silence"
	case stateSpeaking:
		return "Speaking"
	case stateSpeakingConfirmed:
		return "SpeakingConfirmed"
	case stateRedemption:
		return "Redemption"
	default:
		return "Unknown"
	}
}

// FrameProcessor is the hysteresis state machine. It is stateful only
// with respect to a bounded pre-roll ring and the in-flight segment
// accumulator — it holds no audio-source-specific state.
type FrameProcessor struct {
	model  engine.Model
	cfg    Config
	logger *slog.Logger

	state state

	preRoll [][]float32 // chronological order, capped at cfg.PreSpeechPadFrames
	segment [][]float32 // frames belonging to the in-progress segment

	speechFramesInSegment int
	redemptionCounter     int
	redemptionOrigin      state
}

// New constructs a FrameProcessor in the Idle state. Call Resume (which
// StreamVAD.Start delegates to) before the first Process call.
func New(model engine.Model, cfg Config, logger *slog.Logger) (*FrameProcessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameProcessor{
		model:  model,
		cfg:    cfg,
		logger: logger.With("component", "frameproc"),
		state:  stateIdle,
	}, nil
}

// Resume clears the pre-roll ring, the segment accumulator, all counters,
// and the model's recurrent state, then transitions to Silence.
func (fp *FrameProcessor) Resume() error {
	fp.preRoll = nil
	fp.segment = nil
	fp.speechFramesInSegment = 0
	fp.redemptionCounter = 0
	if err := fp.model.ResetState(); err != nil {
		return err
	}
	fp.state = stateSilence
	fp.logger.Debug("resumed", "state", fp.state.String())
	return nil
}

// Process runs the model on frame and drives the state machine. It
// returns one or two events: FrameProcessed is always first, followed by
// at most one of SpeechStart, SpeechRealStart, SpeechEnd, VADMisfire.
//
// Process must only be called between Resume and Pause (EndSegment leaves
// the processor running in Silence) — it is StreamVAD's job never to call
// it while paused.
func (fp *FrameProcessor) Process(ctx context.Context, frame []float32) ([]Event, error) {
	if fp.state == stateIdle {
		return nil, fmt.Errorf("frameproc: Process called while idle; call Resume first")
	}
	if len(frame) != fp.cfg.FrameSamples {
		return nil, fmt.Errorf("frameproc: frame length %d, want %d", len(frame), fp.cfg.FrameSamples)
	}

	probs, err := fp.model.Process(ctx, frame)
	if err != nil {
		return nil, err
	}

	events := []Event{{Kind: EventFrameProcessed, Probs: probs, Frame: frame}}
	if ev := fp.transition(probs, frame); ev != nil {
		events = append(events, *ev)
	}
	return events, nil
}

// transition applies one row of the state transition table and
// returns the non-FrameProcessed event it produced, if any.
func (fp *FrameProcessor) transition(probs engine.SpeechProbabilities, frame []float32) *Event {
	p := probs.IsSpeech

	switch fp.state {
	case stateSilence:
		if p >= fp.cfg.PositiveSpeechThreshold {
			fp.segment = append(fp.segment, fp.preRoll...)
			fp.preRoll = nil
			fp.segment = append(fp.segment, cloneFrame(frame))
			fp.speechFramesInSegment = 1
			fp.state = stateSpeaking
			fp.logger.Debug("speech start", "p", p)
			return &Event{Kind: EventSpeechStart, Probs: probs}
		}
		fp.pushPreRoll(frame)
		return nil

	case stateSpeaking, stateSpeakingConfirmed:
		switch {
		case p >= fp.cfg.PositiveSpeechThreshold:
			fp.segment = append(fp.segment, cloneFrame(frame))
			fp.speechFramesInSegment++
			if fp.state == stateSpeaking && fp.speechFramesInSegment >= fp.cfg.MinSpeechFrames {
				fp.state = stateSpeakingConfirmed
				fp.logger.Debug("speech real start")
				return &Event{Kind: EventSpeechRealStart, Probs: probs}
			}
			return nil
		case p < fp.cfg.NegativeSpeechThreshold:
			fp.segment = append(fp.segment, cloneFrame(frame))
			fp.redemptionOrigin = fp.state
			fp.redemptionCounter = fp.cfg.RedemptionFrames
			fp.state = stateRedemption
			return nil
		default: // middle band: hold
			fp.segment = append(fp.segment, cloneFrame(frame))
			return nil
		}

	case stateRedemption:
		if p >= fp.cfg.PositiveSpeechThreshold {
			fp.segment = append(fp.segment, cloneFrame(frame))
			origin := fp.redemptionOrigin
			fp.speechFramesInSegment++
			fp.state = origin
			if origin == stateSpeaking && fp.speechFramesInSegment >= fp.cfg.MinSpeechFrames {
				fp.state = stateSpeakingConfirmed
				fp.logger.Debug("speech real start (out of redemption)")
				return &Event{Kind: EventSpeechRealStart, Probs: probs}
			}
			return nil
		}
		// p < p+ (either sub-p- or middle band): grace frame consumed.
		fp.redemptionCounter--
		if fp.redemptionCounter <= 0 {
			// The frame that exhausts the grace window belongs to the
			// silence after the segment, not to the segment audio.
			return fp.terminateSegment(probs)
		}
		fp.segment = append(fp.segment, cloneFrame(frame))
		return nil
	}
	return nil
}

// terminateSegment is the "segment termination" rule, reached
// when the redemption counter is exhausted.
func (fp *FrameProcessor) terminateSegment(probs engine.SpeechProbabilities) *Event {
	var ev Event
	if fp.speechFramesInSegment >= fp.cfg.MinSpeechFrames {
		ev = Event{Kind: EventSpeechEnd, Probs: probs, Audio: flattenSegment(fp.segment, fp.cfg.FrameSamples)}
		fp.logger.Debug("speech end", "frames", len(fp.segment))
	} else {
		ev = Event{Kind: EventVADMisfire, Probs: probs}
		fp.logger.Debug("vad misfire", "speechFrames", fp.speechFramesInSegment)
	}
	if err := fp.model.ResetState(); err != nil {
		fp.logger.Warn("model reset failed after segment termination", "error", err)
	}
	fp.segment = nil
	fp.speechFramesInSegment = 0
	fp.redemptionCounter = 0
	fp.preRoll = nil
	fp.state = stateSilence
	return &ev
}

// Pause returns to Idle. If a segment was in progress, it emits SpeechEnd
// (when SubmitUserSpeechOnPause is true and MinSpeechFrames was reached),
// VADMisfire (when it wasn't reached), or nothing (discarded) otherwise.
func (fp *FrameProcessor) Pause() *Event {
	return fp.finalize(stateIdle)
}

// EndSegment applies the same logic as Pause but returns to Silence
// instead of Idle — for mid-stream flush (e.g. on EOF) rather than a
// caller-initiated pause.
func (fp *FrameProcessor) EndSegment() *Event {
	return fp.finalize(stateSilence)
}

func (fp *FrameProcessor) finalize(nextState state) *Event {
	var ev *Event
	inProgress := fp.state == stateSpeaking || fp.state == stateSpeakingConfirmed || fp.state == stateRedemption
	if inProgress {
		switch {
		case fp.cfg.SubmitUserSpeechOnPause && fp.speechFramesInSegment >= fp.cfg.MinSpeechFrames:
			ev = &Event{Kind: EventSpeechEnd, Audio: flattenSegment(fp.segment, fp.cfg.FrameSamples)}
		case fp.speechFramesInSegment < fp.cfg.MinSpeechFrames:
			ev = &Event{Kind: EventVADMisfire}
		}
	}
	fp.segment = nil
	fp.speechFramesInSegment = 0
	fp.redemptionCounter = 0
	fp.preRoll = nil
	fp.state = nextState
	return ev
}

func (fp *FrameProcessor) pushPreRoll(frame []float32) {
	if fp.cfg.PreSpeechPadFrames <= 0 {
		return
	}
	fp.preRoll = append(fp.preRoll, cloneFrame(frame))
	if len(fp.preRoll) > fp.cfg.PreSpeechPadFrames {
		fp.preRoll = fp.preRoll[len(fp.preRoll)-fp.cfg.PreSpeechPadFrames:]
	}
}

func cloneFrame(frame []float32) []float32 {
	out := make([]float32, len(frame))
	copy(out, frame)
	return out
}

func flattenSegment(segment [][]float32, frameSamples int) []float32 {
	out := make([]float32, len(segment)*frameSamples)
	for i, f := range segment {
		copy(out[i*frameSamples:], f)
	}
	return out
}
