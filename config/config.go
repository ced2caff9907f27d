// Package config holds the explicit SynthesisConfig threaded through the
// generator and its synthesizers, replacing the teacher's and the
// original source's global mutable tunables (spec §9 Design Notes:
// "migrate to an explicit SynthesisConfig value... copied into
// synthesizers"). It mirrors piano.Params/piano.NewDefaultParams being
// threaded through NewPiano/NewHammerExciter/NewStringBank.
package config

// SynthesisConfig bundles every tunable the synthesis engine needs. A
// zero-value SynthesisConfig is not valid; always start from
// DefaultConfig().
type SynthesisConfig struct {
	// SampleRate is the output sample rate in Hz. Spec fixes this at
	// 44100; kept as a field (rather than a hardcoded constant) so tests
	// can exercise other rates without duplicating the engine.
	SampleRate int

	// SimulationAmp is the global ceiling on emitted sample magnitude.
	SimulationAmp float64

	// MinTimeBetweenImpacts and MaxTimeBetweenImpacts bound the impact
	// gating window (spec §4.4).
	MinTimeBetweenImpacts float64
	MaxTimeBetweenImpacts float64

	// RoughnessRatioExponentOverride, when non-nil, overrides the
	// per-material roughness_ratio_exponent loaded from the bundle
	// (spec §9 Open Question: "CLI --roughness_ratio_exponent overrides
	// at call site").
	RoughnessRatioExponentOverride *float64

	// Workers is the number of worker goroutines the generator uses for
	// synthesis (spec §5). 0 or 1 means synthesis runs inline on the
	// caller's goroutine.
	Workers int
}

// DefaultConfig returns the legacy-compatible default configuration: the
// same values the original global mutables held, used as the CLI's
// baseline before flag overrides are applied.
func DefaultConfig() SynthesisConfig {
	return SynthesisConfig{
		SampleRate:            44100,
		SimulationAmp:         0.5,
		MinTimeBetweenImpacts: 0.0001,
		MaxTimeBetweenImpacts: 1000,
		Workers:               0,
	}
}

// WithRoughnessRatioExponentOverride returns a copy of c with the
// override set, for ergonomic call-site use (CLI flag wiring).
func (c SynthesisConfig) WithRoughnessRatioExponentOverride(v float64) SynthesisConfig {
	c.RoughnessRatioExponentOverride = &v
	return c
}
