package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	for _, variant := range []string{"legacy", "v5", "stub"} {
		if err := Default(variant).Validate(); err != nil {
			t.Errorf("Default(%q).Validate() = %v, want nil", variant, err)
		}
	}
}

func TestValidateRejectsUnknownVariant(t *testing.T) {
	cfg := Default("v5")
	cfg.ModelVariant = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown model_variant")
	}
}

func TestValidateRejectsZeroFrameSamples(t *testing.T) {
	cfg := Default("v5")
	cfg.FrameSamples = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for frame_samples=0")
	}
}

func TestFrameProcConfigProjection(t *testing.T) {
	cfg := Default("legacy")
	fpCfg := cfg.FrameProcConfig()
	if fpCfg.FrameSamples != cfg.FrameSamples {
		t.Errorf("FrameSamples = %d, want %d", fpCfg.FrameSamples, cfg.FrameSamples)
	}
	if err := fpCfg.Validate(); err != nil {
		t.Errorf("projected frameproc.Config invalid: %v", err)
	}
}

func TestStreamVADConfigProjection(t *testing.T) {
	cfg := Default("v5")
	svCfg := cfg.StreamVADConfig()
	if svCfg.SampleRate != cfg.SampleRate {
		t.Errorf("SampleRate = %d, want %d", svCfg.SampleRate, cfg.SampleRate)
	}
	if err := svCfg.Validate(); err != nil {
		t.Errorf("projected streamvad.Config invalid: %v", err)
	}
}
