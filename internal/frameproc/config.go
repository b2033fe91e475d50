package frameproc

import "github.com/nupi-ai/vad-core/internal/vaderrors"

// Config holds the frame-processor-facing configuration: everything except
// sampleRate, which belongs to the resampler/orchestrator layer above this
// package.
type Config struct {
	// FrameSamples is the model's required input frame size.
	FrameSamples int
	// PositiveSpeechThreshold: isSpeech >= this enters/continues Speaking.
	PositiveSpeechThreshold float32
	// NegativeSpeechThreshold: isSpeech < this triggers Redemption.
	NegativeSpeechThreshold float32
	// RedemptionFrames is the grace period, in frames, tolerated below
	// NegativeSpeechThreshold before a segment ends.
	RedemptionFrames int
	// PreSpeechPadFrames is the pre-roll ring buffer capacity.
	PreSpeechPadFrames int
	// MinSpeechFrames is the number of >=PositiveSpeechThreshold frames a
	// segment needs to avoid being a misfire.
	MinSpeechFrames int
	// SubmitUserSpeechOnPause controls whether Pause() emits SpeechEnd
	// (true) or discards/misfires (false) for an in-progress segment.
	SubmitUserSpeechOnPause bool
}

// Validate enforces the configuration invariant: 0 < p⁻ < p⁺ ≤ 1, all
// frame counts >= 0, frameSamples > 0.
func (c Config) Validate() error {
	if c.FrameSamples <= 0 {
		return vaderrors.NewConfigurationError("FrameSamples", "must be > 0")
	}
	if !(c.NegativeSpeechThreshold > 0) {
		return vaderrors.NewConfigurationError("NegativeSpeechThreshold", "must be > 0")
	}
	if !(c.NegativeSpeechThreshold < c.PositiveSpeechThreshold) {
		return vaderrors.NewConfigurationError("NegativeSpeechThreshold", "must be < PositiveSpeechThreshold")
	}
	if !(c.PositiveSpeechThreshold <= 1) {
		return vaderrors.NewConfigurationError("PositiveSpeechThreshold", "must be <= 1")
	}
	if c.RedemptionFrames < 0 {
		return vaderrors.NewConfigurationError("RedemptionFrames", "must be >= 0")
	}
	if c.PreSpeechPadFrames < 0 {
		return vaderrors.NewConfigurationError("PreSpeechPadFrames", "must be >= 0")
	}
	if c.MinSpeechFrames < 0 {
		return vaderrors.NewConfigurationError("MinSpeechFrames", "must be >= 0")
	}
	return nil
}

// DefaultLegacyConfig returns the defaults for the legacy Silero variant.
func DefaultLegacyConfig() Config {
	return Config{
		FrameSamples:            1536,
		PositiveSpeechThreshold: 0.5,
		NegativeSpeechThreshold: 0.35,
		RedemptionFrames:        8,
		PreSpeechPadFrames:      1,
		MinSpeechFrames:         3,
		SubmitUserSpeechOnPause: false,
	}
}

// DefaultV5Config returns the defaults for the v5 Silero variant.
func DefaultV5Config() Config {
	cfg := DefaultLegacyConfig()
	cfg.FrameSamples = 512
	return cfg
}
