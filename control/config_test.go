package control

import (
	"errors"
	"testing"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"motor": "bldc", "pole_pairs": 7}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Mode != "position" {
		t.Errorf("default mode = %q, want position", cfg.Mode)
	}
	if cfg.PhasePattern != "abcd" {
		t.Errorf("default phase pattern = %q", cfg.PhasePattern)
	}
	if cfg.TickHz == 0 || cfg.SpeedDepth == 0 || cfg.Smoothing == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config does not validate: %v", err)
	}
}

func TestLoadConfigRejectsBadJSON(t *testing.T) {
	if _, err := LoadConfig([]byte(`{"motor": `)); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		c := DefaultBLDCConfig()
		return c
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown motor", func(c *Config) { c.Motor = "induction" }},
		{"unknown pattern", func(c *Config) { c.PhasePattern = "abdc" }},
		{"unknown mode", func(c *Config) { c.Mode = "flux" }},
		{"negative pole pairs", func(c *Config) { c.PolePairs = -1 }},
		{"smoothing too large", func(c *Config) { c.Smoothing = Q15 + 1 }},
		{"smoothing negative", func(c *Config) { c.Smoothing = -5 }},
		{"speed depth too small", func(c *Config) { c.SpeedDepth = 1 }},
		{"delta beyond half range", func(c *Config) { c.MaxDeltaPerTick = HalfTurn }},
		{"negative output limit", func(c *Config) { c.OutputLimitMV = -12 }},
	}
	for _, c := range cases {
		cfg := base()
		c.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted bad config", c.name)
		}
	}
}

func TestConfigResolversMatchErrSentinels(t *testing.T) {
	cfg := DefaultBLDCConfig()
	cfg.Motor = "warp-drive"
	_, err := cfg.MotorType()
	if !errors.Is(err, errUnknownMotor) {
		t.Errorf("err = %v, want errUnknownMotor", err)
	}
}

func TestDefaultBLDCConfigValidates(t *testing.T) {
	cfg := DefaultBLDCConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if m, _ := cfg.MotorType(); m != MotorBLDC {
		t.Errorf("motor = %v, want bldc", m)
	}
	if cfg.PolePairs != 7 {
		t.Errorf("pole pairs = %d, want 7", cfg.PolePairs)
	}
}
