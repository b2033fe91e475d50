package frameproc

import "github.com/nupi-ai/vad-core/internal/engine"

// EventKind tags the union of events a FrameProcessor can emit.
type EventKind int

const (
	// EventFrameProcessed fires exactly once per Process call, regardless
	// of state.
	EventFrameProcessed EventKind = iota
	// EventSpeechStart fires when silence transitions to Speaking.
	EventSpeechStart
	// EventSpeechRealStart fires once a segment reaches minSpeechFrames.
	EventSpeechRealStart
	// EventSpeechEnd fires when a segment that met minSpeechFrames closes,
	// carrying the assembled pre-roll + segment audio.
	EventSpeechEnd
	// EventVADMisfire fires when a segment closes without ever reaching
	// minSpeechFrames — callers should discard any buffered audio for it.
	EventVADMisfire
)

func (k EventKind) String() string {
	switch k {
	case EventFrameProcessed:
		return "FrameProcessed"
	case EventSpeechStart:
		return "SpeechStart"
	case EventSpeechRealStart:
		return "SpeechRealStart"
	case EventSpeechEnd:
		return "SpeechEnd"
	case EventVADMisfire:
		return "VADMisfire"
	default:
		return "Unknown"
	}
}

// Event is the tagged value emitted by a FrameProcessor. Frame is set only
// for EventFrameProcessed; Audio is set only for EventSpeechEnd.
type Event struct {
	Kind  EventKind
	Probs engine.SpeechProbabilities
	Frame []float32
	Audio []float32
}
