package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"

	"github.com/audiomodal/clatter/catalogue"
	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/rng"
)

// minModeAmplitude is the envelope floor below which a mode is
// considered decayed (spec §4.4, "truncate once the envelope falls
// below 1e-7").
const minModeAmplitude = 1e-7

// maxModeSeconds bounds how long any single mode is rendered for, so a
// pathological resonance/decay combination cannot blow up an
// allocation.
const maxModeSeconds = 10.0

// pairImpactState is the per-pair gating state spec §4.4 keeps between
// calls: "previous_impact_time_s, previous_contact_time_s (initially
// -inf)... shared, global bounds". A Generator owns one of these per
// ObjectPairKey, separate from the per-object bookkeeping on
// ObjectData.
type pairImpactState struct {
	hasPreviousImpact    bool
	previousImpactTimeS  float64
	previousContactTimeS float64
}

func newPairImpactState() *pairImpactState {
	return &pairImpactState{previousContactTimeS: negativeInfinity}
}

// NewImpactPairState creates fresh per-pair impact gating state, for
// callers driving ImpactSynth directly without a Generator (e.g. a
// one-shot CLI render).
func NewImpactPairState() *pairImpactState {
	return newPairImpactState()
}

// ImpactSynth renders modal impacts for an object pair, per spec §4.4.
// It is stateless itself; all per-pair memory lives in the
// pairImpactState the caller threads through GetAudio.
type ImpactSynth struct {
	cfg config.SynthesisConfig
}

// NewImpactSynth builds an ImpactSynth bound to cfg.
func NewImpactSynth(cfg config.SynthesisConfig) *ImpactSynth {
	return &ImpactSynth{cfg: cfg}
}

// GetAudio renders one impact between primary and secondary at relative
// speed at simulated time nowS, writing samples into out.
//
// Spec's get_audio(speed, rng) has no explicit clock parameter because
// the original assumes a wall-clock-backed caller; this port threads
// nowS explicitly instead of reading a hidden global clock, so gating
// decisions stay deterministic and testable (see DESIGN.md).
//
// GetAudio returns false (leaving out empty) when the event is
// rejected: speed <= 0, or the pair's last impact was less than
// cfg.MinTimeBetweenImpacts ago. An elapsed gap larger than
// cfg.MaxTimeBetweenImpacts does not reject — it resets the pair to a
// fresh-contact state and proceeds, per spec §4.4.
func (s *ImpactSynth) GetAudio(state *pairImpactState, primary, secondary *ObjectData, speed, nowS float64, r rng.Source, out *Buffer) bool {
	out.Reset()

	if speed <= 0 {
		return false
	}

	if state.hasPreviousImpact {
		dt := nowS - state.previousImpactTimeS
		if dt < s.cfg.MinTimeBetweenImpacts {
			return false
		}
		if dt > s.cfg.MaxTimeBetweenImpacts {
			state.hasPreviousImpact = false
		}
	}

	primaryData, err := catalogue.GetImpact(primary.Material)
	if err != nil {
		return false
	}
	secondaryData, err := catalogue.GetImpact(secondary.Material)
	if err != nil {
		return false
	}

	sampleRate := s.cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	type renderedMode struct {
		freq, amp, tau float64
	}

	rendered := make([]renderedMode, 0, len(primaryData.Modes)+len(secondaryData.Modes))

	appendModes := func(modes []catalogue.Mode, cf, resonance float64) {
		for _, m := range modes {
			amp := cf * dbToLinear(m.PowerDB) * r.Gaussian(0, 1)
			tau := (m.DecayMs / 1000.0) * (1 + resonance)
			rendered = append(rendered, renderedMode{freq: m.FrequencyHz, amp: amp, tau: tau})
		}
	}

	cfPrimary := primary.Amp * speed * primaryData.CF
	cfSecondary := secondary.Amp * speed * secondaryData.CF
	appendModes(primaryData.Modes, cfPrimary, primary.Resonance)
	appendModes(secondaryData.Modes, cfSecondary, secondary.Resonance)

	maxLen := 0
	for _, m := range rendered {
		if n := modeLengthSamples(m.amp, m.tau, sampleRate); n > maxLen {
			maxLen = n
		}
	}
	if maxLen == 0 {
		return false
	}

	out.EnsureCap(maxLen)
	raw := out.Raw()
	for i := 0; i < maxLen; i++ {
		raw[i] = 0
	}

	invSR := 1.0 / float64(sampleRate)
	for _, m := range rendered {
		n := modeLengthSamples(m.amp, m.tau, sampleRate)
		if n > maxLen {
			n = maxLen
		}
		if n == 0 || m.tau <= 0 {
			continue
		}
		w := 2 * math.Pi * m.freq * invSR
		invTau := 1.0 / m.tau
		for i := 0; i < n; i++ {
			t := float64(i) * invSR
			envelope := float32(m.amp) * approx.FastExp(float32(-t*invTau))
			raw[i] += envelope * float32(math.Sin(w*t))
		}
	}

	massWeight := 1 + math.Log10(1+minFloat64(primary.Mass, secondary.Mass))
	if massWeight <= 0 {
		massWeight = 1
	}
	invMassWeight := float32(1 / massWeight)

	peak := float32(0)
	for i := 0; i < maxLen; i++ {
		v := raw[i] * invMassWeight
		raw[i] = v
		if abs := float32(math.Abs(float64(v))); abs > peak {
			peak = abs
		}
	}

	simAmp := float32(s.cfg.SimulationAmp)
	if peak > simAmp && peak > 0 {
		scale := simAmp / peak
		for i := 0; i < maxLen; i++ {
			raw[i] *= scale
		}
	}

	out.SetLength(maxLen)

	contactDurationS := float64(maxLen) * invSR
	state.previousContactTimeS = contactDurationS
	state.previousImpactTimeS = nowS
	state.hasPreviousImpact = true

	primary.HasPreviousImpact = true
	primary.PreviousImpactTimeS = nowS
	secondary.HasPreviousImpact = true
	secondary.PreviousImpactTimeS = nowS

	return true
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// modeLengthSamples finds how many samples amp*exp(-t/tau) takes to
// decay below minModeAmplitude, capped at maxModeSeconds worth of
// samples.
func modeLengthSamples(amp, tau float64, sampleRate int) int {
	amp = math.Abs(amp)
	if amp <= minModeAmplitude || tau <= 0 {
		return 0
	}
	tEnd := tau * math.Log(amp/minModeAmplitude)
	if tEnd > maxModeSeconds {
		tEnd = maxModeSeconds
	}
	if tEnd <= 0 {
		return 0
	}
	n := int(math.Ceil(tEnd*float64(sampleRate))) + 1
	return n
}
