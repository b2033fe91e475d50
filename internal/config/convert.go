package config

import (
	"github.com/nupi-ai/vad-core/internal/frameproc"
	"github.com/nupi-ai/vad-core/internal/streamvad"
)

// FrameProcConfig projects the frame-processor-facing fields out of Config.
func (c Config) FrameProcConfig() frameproc.Config {
	return frameproc.Config{
		FrameSamples:            c.FrameSamples,
		PositiveSpeechThreshold: float32(c.PositiveSpeechThreshold),
		NegativeSpeechThreshold: float32(c.NegativeSpeechThreshold),
		RedemptionFrames:        c.RedemptionFrames,
		PreSpeechPadFrames:      c.PreSpeechPadFrames,
		MinSpeechFrames:         c.MinSpeechFrames,
		SubmitUserSpeechOnPause: c.SubmitUserSpeechOnPause,
	}
}

// StreamVADConfig builds the orchestrator-facing config, including the
// native SampleRate the frame processor's config doesn't carry.
func (c Config) StreamVADConfig() streamvad.Config {
	return streamvad.Config{
		Config:     c.FrameProcConfig(),
		SampleRate: c.SampleRate,
	}
}
