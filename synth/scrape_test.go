package synth

import (
	"math"
	"testing"

	"github.com/audiomodal/clatter/catalogue"
	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/material"
	"github.com/audiomodal/clatter/rng"
)

func newScrapeTestPair(t *testing.T) (*ObjectData, *ObjectData) {
	t.Helper()
	metal := material.NewImpactMaterial(material.Metal, 2)
	glass := material.NewImpactMaterial(material.Glass, 2)
	if err := catalogue.LoadImpact(metal); err != nil {
		t.Fatalf("LoadImpact(metal): %v", err)
	}
	if err := catalogue.LoadImpact(glass); err != nil {
		t.Fatalf("LoadImpact(glass): %v", err)
	}

	a := NewObjectData(10, metal, 0.7, 0.3, 0.5)
	b := NewObjectData(11, glass, 0.7, 0.3, 0.5)
	if err := catalogue.LoadScrape(a.ResolvedScrapeMaterial()); err != nil {
		t.Fatalf("LoadScrape(a): %v", err)
	}
	if err := catalogue.LoadScrape(b.ResolvedScrapeMaterial()); err != nil {
		t.Fatalf("LoadScrape(b): %v", err)
	}
	return a, b
}

func TestScrapeChunkLengthIsFixed(t *testing.T) {
	a, b := newScrapeTestPair(t)
	s := NewScrapeSynth(config.DefaultConfig())
	state := newPairScrapeState()
	out := NewBuffer(0)
	r := rng.New(7)

	if err := s.GetAudio(state, a, b, 0.8, r, out); err != nil {
		t.Fatalf("GetAudio: %v", err)
	}
	if out.Len() != scrapeChunkSamples {
		t.Fatalf("expected chunk length %d, got %d", scrapeChunkSamples, out.Len())
	}
}

func TestScrapeSamplesStayWithinSimulationAmp(t *testing.T) {
	a, b := newScrapeTestPair(t)
	cfg := config.DefaultConfig()
	s := NewScrapeSynth(cfg)
	state := newPairScrapeState()
	out := NewBuffer(0)
	r := rng.New(8)

	for i := 0; i < 3; i++ {
		if err := s.GetAudio(state, a, b, 1.2, r, out); err != nil {
			t.Fatalf("GetAudio chunk %d: %v", i, err)
		}
		for j, v := range out.Samples() {
			if math.Abs(float64(v)) > cfg.SimulationAmp+1e-6 {
				t.Fatalf("chunk %d sample %d = %v exceeds SimulationAmp", i, j, v)
			}
		}
	}
}

func TestScrapeCursorAdvancesAcrossChunks(t *testing.T) {
	a, b := newScrapeTestPair(t)
	s := NewScrapeSynth(config.DefaultConfig())
	state := newPairScrapeState()
	out := NewBuffer(0)
	r := rng.New(9)

	if err := s.GetAudio(state, a, b, 0.5, r, out); err != nil {
		t.Fatalf("GetAudio: %v", err)
	}
	firstCursor := state.dsdxCursor
	if err := s.GetAudio(state, a, b, 0.5, r, out); err != nil {
		t.Fatalf("GetAudio: %v", err)
	}
	if state.dsdxCursor != firstCursor+scrapeChunkSamples {
		t.Fatalf("expected cursor to advance by %d, went from %d to %d", scrapeChunkSamples, firstCursor, state.dsdxCursor)
	}
}

func TestScrapeEndFlushesTail(t *testing.T) {
	a, b := newScrapeTestPair(t)
	cfg := config.DefaultConfig()
	s := NewScrapeSynth(cfg)
	state := newPairScrapeState()
	chunk := NewBuffer(0)
	r := rng.New(10)

	if err := s.GetAudio(state, a, b, 1.0, r, chunk); err != nil {
		t.Fatalf("GetAudio: %v", err)
	}

	tailOut := NewBuffer(0)
	s.End(state, tailOut)
	for _, v := range tailOut.Samples() {
		if math.Abs(float64(v)) > cfg.SimulationAmp+1e-6 {
			t.Fatalf("flushed tail sample %v exceeds SimulationAmp", v)
		}
	}
	if state.tail != nil {
		t.Fatalf("expected End to clear the tail")
	}
}

func TestNumScrapeEventsMatchesChunkCount(t *testing.T) {
	s := NewScrapeSynth(config.DefaultConfig())
	durationS := 1.0
	n := s.NumScrapeEvents(durationS)
	expected := int(math.Ceil(durationS * 44100 / float64(scrapeChunkSamples)))
	if n != expected {
		t.Fatalf("expected %d events for %v seconds, got %d", expected, durationS, n)
	}
	if s.NumScrapeEvents(0) != 0 {
		t.Fatalf("expected 0 events for non-positive duration")
	}
}
