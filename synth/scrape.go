package synth

import (
	"math"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/audiomodal/clatter/catalogue"
	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/rng"
)

// scrapeChunkSamples is the fixed render quantum for continuous scrape
// contact (spec §4.5, "SCRAPE_CHUNK = 4410" — 100ms at 44100Hz).
const scrapeChunkSamples = 4410

// scrapeImpulseResponseLen bounds the per-pair resonant impulse
// response rendered once at scrape start (see pairScrapeState.start).
const scrapeImpulseResponseLen = 512

const (
	scrapeLowpassMinHz       = 200.0
	scrapeLowpassMaxHz       = 18000.0
	scrapeLowpassBaseHz      = 1000.0
	scrapeLowpassSpeedGainHz = 4000.0
	scrapeLowpassQ           = 0.7071067811865476 // 1/sqrt(2), Butterworth Q
)

// pairScrapeState is the per-pair memory a continuous scrape needs
// between chunk calls: the convolution engine and its overlap tail, the
// cursor into the roughness-derivative profile, and the dynamic
// low-pass state (spec §4.5).
type pairScrapeState struct {
	started bool

	impulseResponse []float64
	conv            *dspconv.OverlapAdd
	tail            []float64

	dsdxCursor int

	lowpass biquad
}

func newPairScrapeState() *pairScrapeState {
	return &pairScrapeState{}
}

// NewScrapePairState creates fresh per-pair scrape state, for callers
// driving ScrapeSynth directly without a Generator (e.g. a one-shot CLI
// render).
func NewScrapePairState() *pairScrapeState {
	return newPairScrapeState()
}

// ScrapeSynth renders continuous scrape contact between an object pair,
// per spec §4.5.
type ScrapeSynth struct {
	cfg config.SynthesisConfig
}

// NewScrapeSynth builds a ScrapeSynth bound to cfg.
func NewScrapeSynth(cfg config.SynthesisConfig) *ScrapeSynth {
	return &ScrapeSynth{cfg: cfg}
}

func (s *ScrapeSynth) sampleRate() int {
	if s.cfg.SampleRate > 0 {
		return s.cfg.SampleRate
	}
	return 44100
}

// NumScrapeEvents returns how many scrapeChunkSamples-long chunks a
// continuous scrape lasting durationS needs (spec §4.5
// get_num_scrape_events).
func (s *ScrapeSynth) NumScrapeEvents(durationS float64) int {
	if durationS <= 0 {
		return 0
	}
	total := durationS * float64(s.sampleRate())
	return int(math.Ceil(total / float64(scrapeChunkSamples)))
}

// start renders this pair's resonant impulse response once, the first
// time a scrape begins. The response reuses the same modal data and
// math as ImpactSynth, rendered at unit amplitude and truncated to
// scrapeImpulseResponseLen samples, since spec's "precomputed impulse
// response" is otherwise unspecified and the pair's modal ring is the
// only acoustic signature the catalogue gives us (see DESIGN.md).
func (s *ScrapeSynth) start(state *pairScrapeState, primary, secondary *ObjectData, r rng.Source) error {
	primaryData, err := catalogue.GetImpact(primary.Material)
	if err != nil {
		return err
	}
	secondaryData, err := catalogue.GetImpact(secondary.Material)
	if err != nil {
		return err
	}

	sampleRate := s.sampleRate()
	invSR := 1.0 / float64(sampleRate)
	ir := make([]float64, scrapeImpulseResponseLen)

	renderModes := func(modes []catalogue.Mode, resonance float64) {
		for _, m := range modes {
			amp := dbToLinear(m.PowerDB) * r.Gaussian(0, 1)
			tau := (m.DecayMs / 1000.0) * (1 + resonance)
			if tau <= 0 {
				continue
			}
			w := 2 * math.Pi * m.FrequencyHz * invSR
			invTau := 1 / tau
			for i := 0; i < scrapeImpulseResponseLen; i++ {
				t := float64(i) * invSR
				ir[i] += amp * math.Exp(-t*invTau) * math.Sin(w*t)
			}
		}
	}
	renderModes(primaryData.Modes, primary.Resonance)
	renderModes(secondaryData.Modes, secondary.Resonance)

	peak := 0.0
	for _, v := range ir {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range ir {
			ir[i] /= peak
		}
	}

	conv, err := dspconv.NewOverlapAdd(ir, 128)
	if err != nil {
		return err
	}

	state.impulseResponse = ir
	state.conv = conv
	state.started = true
	return nil
}

// GetAudio renders the next scrapeChunkSamples-long chunk of ongoing
// contact between primary and secondary at the given relative speed.
// Consecutive calls with the same state produce gapless output via
// overlap-add; End flushes the trailing convolution tail once contact
// stops.
func (s *ScrapeSynth) GetAudio(state *pairScrapeState, primary, secondary *ObjectData, speed float64, r rng.Source, out *Buffer) error {
	if !state.started {
		if err := s.start(state, primary, secondary, r); err != nil {
			return err
		}
	}

	primaryScrape, err := catalogue.GetScrape(primary.ResolvedScrapeMaterial())
	if err != nil {
		return err
	}
	secondaryScrape, err := catalogue.GetScrape(secondary.ResolvedScrapeMaterial())
	if err != nil {
		return err
	}

	roughnessExponent := (primaryScrape.RoughnessRatioExponent + secondaryScrape.RoughnessRatioExponent) / 2
	if s.cfg.RoughnessRatioExponentOverride != nil {
		roughnessExponent = *s.cfg.RoughnessRatioExponentOverride
	}

	dsdxLen := len(primaryScrape.Dsdx)
	if dsdxLen == 0 {
		dsdxLen = len(secondaryScrape.Dsdx)
	}

	absSpeed := math.Abs(speed)
	roughnessRatio := maxFloat64(absSpeed, 1e-5)
	gain := speed * speed * math.Pow(roughnessRatio, -roughnessExponent)

	raw := make([]float64, scrapeChunkSamples)
	if dsdxLen > 0 {
		for i := 0; i < scrapeChunkSamples; i++ {
			idx := state.dsdxCursor % dsdxLen
			var sample float64
			if idx < len(primaryScrape.Dsdx) {
				sample = primaryScrape.Dsdx[idx]
			}
			raw[i] = sample * gain
			state.dsdxCursor++
		}
	}

	convOut, err := state.conv.Process(raw)
	if err != nil {
		return err
	}
	if len(convOut) > 2*scrapeChunkSamples {
		convOut = convOut[:2*scrapeChunkSamples]
	}

	emit, newTail := overlapAddBlock(convOut, state.tail, scrapeChunkSamples)
	state.tail = newTail

	sampleRate := s.sampleRate()
	cutoff := clampFloat64(scrapeLowpassBaseHz+scrapeLowpassSpeedGainHz*absSpeed, scrapeLowpassMinHz, scrapeLowpassMaxHz)
	state.lowpass.setLowpassRBJ(cutoff, float64(sampleRate), scrapeLowpassQ)

	out.EnsureCap(scrapeChunkSamples)
	rawOut := out.Raw()
	simAmp := s.cfg.SimulationAmp
	for i := 0; i < scrapeChunkSamples; i++ {
		v := state.lowpass.process(emit[i])
		rawOut[i] = float32(clampFloat64(v, -simAmp, simAmp))
	}
	out.SetLength(scrapeChunkSamples)

	return nil
}

// End flushes the convolution tail remaining once a pair's scrape
// contact has stopped, so the tail's energy is not silently dropped.
func (s *ScrapeSynth) End(state *pairScrapeState, out *Buffer) {
	if len(state.tail) == 0 {
		out.Reset()
		return
	}
	out.EnsureCap(len(state.tail))
	raw := out.Raw()
	simAmp := s.cfg.SimulationAmp
	for i, v := range state.tail {
		v = state.lowpass.process(v)
		raw[i] = float32(clampFloat64(v, -simAmp, simAmp))
	}
	out.SetLength(len(state.tail))
	state.tail = nil
}
