package config

import "testing"

func TestLoaderDefaults(t *testing.T) {
	loader := Loader{
		Lookup: func(string) (string, bool) { return "", false },
	}
	cfg, err := loader.Load("v5")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.FrameSamples != 512 {
		t.Errorf("FrameSamples = %d, want 512 (v5 default)", cfg.FrameSamples)
	}
	if cfg.PositiveSpeechThreshold != DefaultPositiveSpeechThreshold {
		t.Errorf("PositiveSpeechThreshold = %v, want %v", cfg.PositiveSpeechThreshold, DefaultPositiveSpeechThreshold)
	}
	if cfg.RedemptionFrames != DefaultRedemptionFrames {
		t.Errorf("RedemptionFrames = %d, want %d", cfg.RedemptionFrames, DefaultRedemptionFrames)
	}
	if cfg.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", cfg.SampleRate, DefaultSampleRate)
	}
}

func TestLoaderDefaultsLegacyVariant(t *testing.T) {
	loader := Loader{Lookup: func(string) (string, bool) { return "", false }}
	cfg, err := loader.Load("legacy")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FrameSamples != 1536 {
		t.Errorf("FrameSamples = %d, want 1536 (legacy default)", cfg.FrameSamples)
	}
}

func TestLoaderJSON(t *testing.T) {
	env := map[string]string{
		"VADCORE_CONFIG": `{"positive_speech_threshold":0.7,"redemption_frames":100,"listen_addr":"localhost:9999"}`,
	}
	loader := Loader{
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
	cfg, err := loader.Load("v5")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PositiveSpeechThreshold != 0.7 {
		t.Errorf("PositiveSpeechThreshold = %v, want 0.7", cfg.PositiveSpeechThreshold)
	}
	if cfg.RedemptionFrames != 100 {
		t.Errorf("RedemptionFrames = %d, want 100", cfg.RedemptionFrames)
	}
	if cfg.ListenAddr != "localhost:9999" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "localhost:9999")
	}
	// Unset fields keep defaults.
	if cfg.MinSpeechFrames != DefaultMinSpeechFrames {
		t.Errorf("MinSpeechFrames = %d, want default %d", cfg.MinSpeechFrames, DefaultMinSpeechFrames)
	}
}

func TestLoaderEnvOverride(t *testing.T) {
	env := map[string]string{
		"VADCORE_CONFIG":                    `{"positive_speech_threshold":0.3}`,
		"VADCORE_LISTEN_ADDR":               "127.0.0.1:5555",
		"VADCORE_POSITIVE_SPEECH_THRESHOLD": "0.8",
		"VADCORE_REDEMPTION_FRAMES":         "500",
	}
	loader := Loader{
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
	cfg, err := loader.Load("v5")
	if err != nil {
		t.Fatal(err)
	}
	// Env var overrides JSON.
	if cfg.PositiveSpeechThreshold != 0.8 {
		t.Errorf("PositiveSpeechThreshold = %v, want 0.8 (env override)", cfg.PositiveSpeechThreshold)
	}
	if cfg.ListenAddr != "127.0.0.1:5555" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "127.0.0.1:5555")
	}
	if cfg.RedemptionFrames != 500 {
		t.Errorf("RedemptionFrames = %d, want 500", cfg.RedemptionFrames)
	}
}

func TestLoaderInvalidJSON(t *testing.T) {
	env := map[string]string{
		"VADCORE_CONFIG": `{bad json}`,
	}
	loader := Loader{
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
	_, err := loader.Load("v5")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoaderRejectsInvalidThresholds(t *testing.T) {
	env := map[string]string{
		"VADCORE_POSITIVE_SPEECH_THRESHOLD": "0.1",
		"VADCORE_NEGATIVE_SPEECH_THRESHOLD": "0.5",
	}
	loader := Loader{
		Lookup: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
	if _, err := loader.Load("v5"); err == nil {
		t.Fatal("expected error: negative threshold must be < positive threshold")
	}
}
