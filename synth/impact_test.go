package synth

import (
	"math"
	"testing"

	"github.com/audiomodal/clatter/catalogue"
	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/material"
	"github.com/audiomodal/clatter/rng"
)

func mustLoadImpact(t *testing.T, m material.ImpactMaterial) {
	t.Helper()
	if err := catalogue.LoadImpact(m); err != nil {
		t.Fatalf("LoadImpact(%s): %v", m, err)
	}
}

func newTestPair(t *testing.T) (*ObjectData, *ObjectData) {
	t.Helper()
	glass := material.NewImpactMaterial(material.Glass, 2)
	stone := material.NewImpactMaterial(material.Stone, 2)
	mustLoadImpact(t, glass)
	mustLoadImpact(t, stone)

	a := NewObjectData(1, glass, 0.8, 0.5, 0.2)
	b := NewObjectData(2, stone, 0.8, 0.5, 1.5)
	return a, b
}

func TestImpactRejectsNonPositiveSpeed(t *testing.T) {
	a, b := newTestPair(t)
	s := NewImpactSynth(config.DefaultConfig())
	state := newPairImpactState()
	out := NewBuffer(0)
	r := rng.New(1)

	if s.GetAudio(state, a, b, 0, 0, r, out) {
		t.Fatalf("expected rejection for speed == 0")
	}
	if s.GetAudio(state, a, b, -1, 0, r, out) {
		t.Fatalf("expected rejection for negative speed")
	}
}

func TestImpactRejectsTooSoon(t *testing.T) {
	a, b := newTestPair(t)
	cfg := config.DefaultConfig()
	s := NewImpactSynth(cfg)
	state := newPairImpactState()
	out := NewBuffer(0)
	r := rng.New(2)

	if !s.GetAudio(state, a, b, 1.0, 0, r, out) {
		t.Fatalf("expected first impact to be accepted")
	}
	if s.GetAudio(state, a, b, 1.0, cfg.MinTimeBetweenImpacts/2, r, out) {
		t.Fatalf("expected impact within MinTimeBetweenImpacts to be rejected")
	}
}

func TestImpactAcceptsAfterLongGapAsFreshContact(t *testing.T) {
	a, b := newTestPair(t)
	cfg := config.DefaultConfig()
	s := NewImpactSynth(cfg)
	state := newPairImpactState()
	out := NewBuffer(0)
	r := rng.New(3)

	if !s.GetAudio(state, a, b, 1.0, 0, r, out) {
		t.Fatalf("expected first impact to be accepted")
	}
	farFuture := cfg.MaxTimeBetweenImpacts * 2
	if !s.GetAudio(state, a, b, 1.0, farFuture, r, out) {
		t.Fatalf("expected impact after MaxTimeBetweenImpacts gap to be accepted as fresh contact")
	}
	if state.previousImpactTimeS != farFuture {
		t.Fatalf("expected previousImpactTimeS to update to %v, got %v", farFuture, state.previousImpactTimeS)
	}
}

func TestImpactSamplesStayWithinSimulationAmp(t *testing.T) {
	a, b := newTestPair(t)
	cfg := config.DefaultConfig()
	s := NewImpactSynth(cfg)
	state := newPairImpactState()
	out := NewBuffer(0)
	r := rng.New(4)

	if !s.GetAudio(state, a, b, 2.0, 0, r, out) {
		t.Fatalf("expected impact to be accepted")
	}
	if out.Len() == 0 {
		t.Fatalf("expected non-empty rendered buffer")
	}
	for i, v := range out.Samples() {
		if math.Abs(float64(v)) > cfg.SimulationAmp+1e-6 {
			t.Fatalf("sample %d = %v exceeds SimulationAmp %v", i, v, cfg.SimulationAmp)
		}
	}
}

func TestImpactDeterministicWithSameSeed(t *testing.T) {
	cfg := config.DefaultConfig()

	run := func(seed int64) []float32 {
		a, b := newTestPair(t)
		s := NewImpactSynth(cfg)
		state := newPairImpactState()
		out := NewBuffer(0)
		r := rng.New(seed)
		if !s.GetAudio(state, a, b, 1.5, 0, r, out) {
			t.Fatalf("expected impact to be accepted")
		}
		samples := make([]float32, out.Len())
		copy(samples, out.Samples())
		return samples
	}

	first := run(42)
	second := run(42)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestModeLengthSamplesMonotoneInAmplitude(t *testing.T) {
	small := modeLengthSamples(1e-6, 0.1, 44100)
	large := modeLengthSamples(1.0, 0.1, 44100)
	if large <= small {
		t.Fatalf("expected larger amplitude to yield a longer mode, got %d <= %d", large, small)
	}
}

func TestModeLengthSamplesCappedByMaxModeSeconds(t *testing.T) {
	n := modeLengthSamples(1.0, 1000.0, 44100)
	maxSamples := int(maxModeSeconds*44100) + 1
	if n > maxSamples {
		t.Fatalf("expected mode length capped at %d samples, got %d", maxSamples, n)
	}
}
