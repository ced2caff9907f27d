// Command clatter renders a single collision (impact or continuous
// scrape) between two materials to a mono PCM16 WAV file, per the CLI
// contract of spec §6. It is a one-shot render, not a simulation host:
// for a running physics simulation, embed synth.Generator directly.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/audiomodal/clatter/catalogue"
	"github.com/audiomodal/clatter/config"
	"github.com/audiomodal/clatter/rng"
	"github.com/audiomodal/clatter/synth"
)

// Exit codes, per spec §6.
const (
	exitSuccess     = 0
	exitBadArgument = 2
	exitUnknown     = 3
	exitIOFailure   = 4
)

// cliSeed is the fixed RNG seed a one-shot render uses, so invoking the
// CLI twice with identical flags reproduces identical audio.
const cliSeed = 1

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("clatter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	flags := cliFlags{
		primaryMaterial:        fs.String("primary_material", "", "primary object's impact material, e.g. glass_1 (required)"),
		primaryAmp:             fs.Float64("primary_amp", 0, "primary object's modal amplitude contribution, in (0,1) (required)"),
		primaryResonance:       fs.Float64("primary_resonance", 0, "primary object's resonance, >= 0 (required)"),
		primaryMass:            fs.Float64("primary_mass", 0, "primary object's mass in kg, > 0 (required)"),
		secondaryMaterial:      fs.String("secondary_material", "", "secondary object's impact material (required)"),
		secondaryAmp:           fs.Float64("secondary_amp", 0, "secondary object's modal amplitude contribution, in (0,1) (required)"),
		secondaryResonance:     fs.Float64("secondary_resonance", 0, "secondary object's resonance, >= 0 (required)"),
		secondaryMass:          fs.Float64("secondary_mass", 0, "secondary object's mass in kg, > 0 (required)"),
		speed:                  fs.Float64("speed", 0, "relative contact speed, >= 0 (required)"),
		eventType:              fs.String("type", "", "impact|scrape (required)"),
		scrapeMaterial:         fs.String("scrape_material", "", "scrape material name, required if type=scrape"),
		duration:               fs.Float64("duration", 0, "scrape duration in seconds, > 0, required if type=scrape"),
		roughnessRatioExponent: fs.Float64("roughness_ratio_exponent", math.NaN(), "optional override of the catalogue roughness-ratio exponent"),
		simulationAmp:          fs.Float64("simulation_amp", 0.5, "global sample magnitude ceiling, in (0,0.99)"),
		path:                   fs.String("path", "", "output WAV path; if omitted, WAV is written to stdout"),
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitBadArgument
	}

	primary, secondary, renderType, scrapeMat, err := validateArgs(flags)
	if err != nil {
		fmt.Fprintf(stderr, "clatter: %v\n", err)
		var badArg *badArgumentError
		if errors.As(err, &badArg) {
			return exitBadArgument
		}
		return exitUnknown
	}

	cfg := config.DefaultConfig()
	cfg.SimulationAmp = *flags.simulationAmp
	if !math.IsNaN(*flags.roughnessRatioExponent) {
		cfg = cfg.WithRoughnessRatioExponentOverride(*flags.roughnessRatioExponent)
	}

	if err := catalogue.LoadImpact(primary.Material); err != nil {
		fmt.Fprintf(stderr, "clatter: %v\n", err)
		return exitForCatalogueErr(err)
	}
	if err := catalogue.LoadImpact(secondary.Material); err != nil {
		fmt.Fprintf(stderr, "clatter: %v\n", err)
		return exitForCatalogueErr(err)
	}

	var samples []float32
	switch renderType {
	case "impact":
		samples = renderImpact(cfg, primary, secondary, *flags.speed)
	case "scrape":
		primary.ScrapeMaterial = &scrapeMat
		secondary.ScrapeMaterial = &scrapeMat
		if err := catalogue.LoadScrape(scrapeMat); err != nil {
			fmt.Fprintf(stderr, "clatter: %v\n", err)
			return exitForCatalogueErr(err)
		}
		samples, err = renderScrape(cfg, primary, secondary, *flags.speed, *flags.duration)
		if err != nil {
			fmt.Fprintf(stderr, "clatter: %v\n", err)
			return exitIOFailure
		}
	}

	var file *os.File
	if *flags.path != "" {
		file, err = os.Create(*flags.path)
		if err != nil {
			fmt.Fprintf(stderr, "clatter: %v\n", err)
			return exitIOFailure
		}
		defer file.Close()
	}

	if file != nil {
		if err := writeWAVSeekable(file, cfg.SampleRate, samples); err != nil {
			fmt.Fprintf(stderr, "clatter: %v\n", err)
			return exitIOFailure
		}
	} else {
		if err := writeWAVStream(stdout, cfg.SampleRate, samples); err != nil {
			fmt.Fprintf(stderr, "clatter: %v\n", err)
			return exitIOFailure
		}
	}

	return exitSuccess
}

func exitForCatalogueErr(err error) int {
	switch {
	case errors.Is(err, catalogue.ErrUnknownMaterial):
		return exitUnknown
	default:
		return exitIOFailure
	}
}

func renderImpact(cfg config.SynthesisConfig, primary, secondary *synth.ObjectData, speed float64) []float32 {
	s := synth.NewImpactSynth(cfg)
	state := synth.NewImpactPairState()
	out := synth.NewBuffer(0)
	r := rng.New(cliSeed)

	s.GetAudio(state, primary, secondary, speed, 0, r, out)
	samples := make([]float32, out.Len())
	copy(samples, out.Samples())
	return samples
}

func renderScrape(cfg config.SynthesisConfig, primary, secondary *synth.ObjectData, speed, duration float64) ([]float32, error) {
	s := synth.NewScrapeSynth(cfg)
	state := synth.NewScrapePairState()
	r := rng.New(cliSeed)

	n := s.NumScrapeEvents(duration)
	var samples []float32
	for i := 0; i < n; i++ {
		chunk := synth.NewBuffer(0)
		if err := s.GetAudio(state, primary, secondary, speed, r, chunk); err != nil {
			return nil, err
		}
		samples = append(samples, chunk.Samples()...)
	}
	tail := synth.NewBuffer(0)
	s.End(state, tail)
	samples = append(samples, tail.Samples()...)
	return samples, nil
}

// writeWAVSeekable writes a mono 16-bit WAV to a seekable file, using
// the same wav.NewEncoder/audio.Float32Buffer pattern as
// cmd/piano-render/main.go.
func writeWAVSeekable(w io.WriteSeeker, sampleRate int, samples []float32) error {
	encoder := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return err
	}
	return encoder.Close()
}
