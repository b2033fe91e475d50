// Package config loads the VAD core's configuration: the
// frame-processor table plus the ambient fields (listen address, log
// level, model variant) the CLI needs to wire everything together.
package config

import "github.com/nupi-ai/vad-core/internal/vaderrors"

const (
	DefaultListenAddr              = "localhost:0"
	DefaultLogLevel                = "info"
	DefaultModelVariant            = "v5"
	DefaultSampleRate              = 16000
	DefaultPositiveSpeechThreshold = 0.5
	DefaultNegativeSpeechThreshold = 0.35
	DefaultRedemptionFrames        = 8
	DefaultPreSpeechPadFrames      = 1
	DefaultMinSpeechFrames         = 3
	DefaultSubmitUserSpeechOnPause = false
)

// defaultFrameSamplesForVariant mirrors the per-variant frame
// size column: v5 only accepts 512, legacy accepts 512/1024/1536.
var defaultFrameSamplesForVariant = map[string]int{
	"v5":     512,
	"legacy": 1536,
	"stub":   512,
}

// Config holds every field in the configuration table
// (FrameSamples, PositiveSpeechThreshold, NegativeSpeechThreshold,
// RedemptionFrames, PreSpeechPadFrames, MinSpeechFrames,
// SubmitUserSpeechOnPause, SampleRate) plus the CLI's ambient fields.
type Config struct {
	ListenAddr   string `json:"listen_addr"`
	LogLevel     string `json:"log_level"`
	ModelVariant string `json:"model_variant"` // "legacy", "v5", or "stub"

	FrameSamples            int     `json:"frame_samples"`
	SampleRate              int     `json:"sample_rate"`
	PositiveSpeechThreshold float64 `json:"positive_speech_threshold"`
	NegativeSpeechThreshold float64 `json:"negative_speech_threshold"`
	RedemptionFrames        int     `json:"redemption_frames"`
	PreSpeechPadFrames      int     `json:"pre_speech_pad_frames"`
	MinSpeechFrames         int     `json:"min_speech_frames"`
	SubmitUserSpeechOnPause bool    `json:"submit_user_speech_on_pause"`
}

// Validate enforces the invariant: 0 < p⁻ < p⁺ ≤ 1, all frame
// counts >= 0, frameSamples > 0, sampleRate > 0.
func (c Config) Validate() error {
	if c.FrameSamples <= 0 {
		return vaderrors.NewConfigurationError("frame_samples", "must be > 0")
	}
	if c.SampleRate <= 0 {
		return vaderrors.NewConfigurationError("sample_rate", "must be > 0")
	}
	if !(c.NegativeSpeechThreshold > 0) {
		return vaderrors.NewConfigurationError("negative_speech_threshold", "must be > 0")
	}
	if !(c.NegativeSpeechThreshold < c.PositiveSpeechThreshold) {
		return vaderrors.NewConfigurationError("negative_speech_threshold", "must be < positive_speech_threshold")
	}
	if !(c.PositiveSpeechThreshold <= 1) {
		return vaderrors.NewConfigurationError("positive_speech_threshold", "must be <= 1")
	}
	if c.RedemptionFrames < 0 {
		return vaderrors.NewConfigurationError("redemption_frames", "must be >= 0")
	}
	if c.PreSpeechPadFrames < 0 {
		return vaderrors.NewConfigurationError("pre_speech_pad_frames", "must be >= 0")
	}
	if c.MinSpeechFrames < 0 {
		return vaderrors.NewConfigurationError("min_speech_frames", "must be >= 0")
	}
	switch c.ModelVariant {
	case "legacy", "v5", "stub":
	default:
		return vaderrors.NewConfigurationError("model_variant", "must be one of legacy, v5, stub")
	}
	return nil
}

// Default returns the configuration defaults for the given model variant
// ("legacy", "v5", or "stub"), falling back to v5's defaults for an
// unrecognized variant (Validate will reject it downstream).
func Default(variant string) Config {
	frameSamples, ok := defaultFrameSamplesForVariant[variant]
	if !ok {
		frameSamples = defaultFrameSamplesForVariant["v5"]
	}
	return Config{
		ListenAddr:              DefaultListenAddr,
		LogLevel:                DefaultLogLevel,
		ModelVariant:            variant,
		FrameSamples:            frameSamples,
		SampleRate:              DefaultSampleRate,
		PositiveSpeechThreshold: DefaultPositiveSpeechThreshold,
		NegativeSpeechThreshold: DefaultNegativeSpeechThreshold,
		RedemptionFrames:        DefaultRedemptionFrames,
		PreSpeechPadFrames:      DefaultPreSpeechPadFrames,
		MinSpeechFrames:         DefaultMinSpeechFrames,
		SubmitUserSpeechOnPause: DefaultSubmitUserSpeechOnPause,
	}
}
