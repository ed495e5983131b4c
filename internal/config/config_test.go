package config_test

import (
	"testing"
	"time"

	"ciphera/internal/config"
)

func TestDefault(t *testing.T) {
	d := config.Default()
	if d.MaxRatchetSteps != 1000 {
		t.Fatalf("MaxRatchetSteps = %d, want 1000", d.MaxRatchetSteps)
	}
	if d.MaxSkippedKeys != 10000 {
		t.Fatalf("MaxSkippedKeys = %d, want 10000", d.MaxSkippedKeys)
	}
	if d.SkippedKeyTTL != 7*24*time.Hour {
		t.Fatalf("SkippedKeyTTL = %v, want 168h", d.SkippedKeyTTL)
	}
	if d.MaxMessageKeysPerStep != 1000 {
		t.Fatalf("MaxMessageKeysPerStep = %d, want 1000", d.MaxMessageKeysPerStep)
	}
	if d.ExportableKeys {
		t.Fatal("ExportableKeys should default to false")
	}
	if d.Debug {
		t.Fatal("Debug should default to false")
	}
}

func TestFromEnv_OverridesOnlySetVars(t *testing.T) {
	t.Setenv("CIPHERA_MAX_RATCHET_STEPS", "42")
	t.Setenv("CIPHERA_DEBUG", "true")

	got := config.FromEnv(config.Default())
	if got.MaxRatchetSteps != 42 {
		t.Fatalf("MaxRatchetSteps = %d, want 42", got.MaxRatchetSteps)
	}
	if !got.Debug {
		t.Fatal("Debug should be true")
	}
	if got.MaxSkippedKeys != 10000 {
		t.Fatalf("MaxSkippedKeys should be untouched, got %d", got.MaxSkippedKeys)
	}
}

func TestFromEnv_IgnoresUnparsable(t *testing.T) {
	t.Setenv("CIPHERA_MAX_RATCHET_STEPS", "not-a-number")

	got := config.FromEnv(config.Default())
	if got.MaxRatchetSteps != 1000 {
		t.Fatalf("MaxRatchetSteps = %d, want default 1000 on unparsable override", got.MaxRatchetSteps)
	}
}
