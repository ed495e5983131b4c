package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv overlays environment-variable overrides onto base and returns the
// result; base is untouched. Recognized variables:
//
//	CIPHERA_MAX_RATCHET_STEPS
//	CIPHERA_MAX_SKIPPED_KEYS
//	CIPHERA_SKIPPED_KEY_TTL (Go duration string, e.g. "168h")
//	CIPHERA_MAX_MESSAGE_KEYS_PER_STEP
//	CIPHERA_EXPORTABLE_KEYS (bool)
//	CIPHERA_DEBUG (bool)
//
// FromEnv does not load a .env file; that is cmd/ciphera's job via
// godotenv.Load before FromEnv is called.
func FromEnv(base Options) Options {
	out := base

	if v, ok := envInt("CIPHERA_MAX_RATCHET_STEPS"); ok {
		out.MaxRatchetSteps = v
	}
	if v, ok := envInt("CIPHERA_MAX_SKIPPED_KEYS"); ok {
		out.MaxSkippedKeys = v
	}
	if v, ok := os.LookupEnv("CIPHERA_SKIPPED_KEY_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			out.SkippedKeyTTL = d
		}
	}
	if v, ok := envInt("CIPHERA_MAX_MESSAGE_KEYS_PER_STEP"); ok {
		out.MaxMessageKeysPerStep = v
	}
	if v, ok := envBool("CIPHERA_EXPORTABLE_KEYS"); ok {
		out.ExportableKeys = v
	}
	if v, ok := envBool("CIPHERA_DEBUG"); ok {
		out.Debug = v
	}
	return out
}

func envInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
