package main

import (
	"fmt"

	"github.com/audiomodal/clatter/material"
	"github.com/audiomodal/clatter/synth"
)

// cliFlags holds the parsed (but not yet validated) flag.Value pointers
// for every flag spec §6 lists.
type cliFlags struct {
	primaryMaterial    *string
	primaryAmp         *float64
	primaryResonance   *float64
	primaryMass        *float64
	secondaryMaterial  *string
	secondaryAmp       *float64
	secondaryResonance *float64
	secondaryMass      *float64
	speed              *float64
	eventType          *string
	scrapeMaterial     *string
	duration           *float64

	roughnessRatioExponent *float64
	simulationAmp          *float64
	path                   *string
}

// badArgumentError maps to exit code 2 (spec §6): an invalid numeric or
// out-of-range flag.
type badArgumentError struct {
	msg string
}

func (e *badArgumentError) Error() string { return e.msg }

func badArgument(format string, args ...any) error {
	return &badArgumentError{msg: fmt.Sprintf(format, args...)}
}

// validateArgs checks every flag against spec §6's constraints and
// resolves the two impact materials (and, for scrape events, the scrape
// material). Any rejection is either a *badArgumentError (exit 2) or a
// wrapped catalogue.ErrUnknownMaterial (exit 3).
func validateArgs(f cliFlags) (primary, secondary *synth.ObjectData, renderType string, scrapeMat material.ScrapeMaterial, err error) {
	if *f.eventType != "impact" && *f.eventType != "scrape" {
		return nil, nil, "", 0, badArgument("--type must be \"impact\" or \"scrape\", got %q", *f.eventType)
	}
	renderType = *f.eventType

	if *f.primaryMaterial == "" {
		return nil, nil, "", 0, badArgument("--primary_material is required")
	}
	if *f.secondaryMaterial == "" {
		return nil, nil, "", 0, badArgument("--secondary_material is required")
	}
	if err := validateUnitInterval("--primary_amp", *f.primaryAmp); err != nil {
		return nil, nil, "", 0, err
	}
	if err := validateUnitInterval("--secondary_amp", *f.secondaryAmp); err != nil {
		return nil, nil, "", 0, err
	}
	if *f.primaryResonance < 0 {
		return nil, nil, "", 0, badArgument("--primary_resonance must be >= 0, got %v", *f.primaryResonance)
	}
	if *f.secondaryResonance < 0 {
		return nil, nil, "", 0, badArgument("--secondary_resonance must be >= 0, got %v", *f.secondaryResonance)
	}
	if *f.primaryMass <= 0 {
		return nil, nil, "", 0, badArgument("--primary_mass must be > 0, got %v", *f.primaryMass)
	}
	if *f.secondaryMass <= 0 {
		return nil, nil, "", 0, badArgument("--secondary_mass must be > 0, got %v", *f.secondaryMass)
	}
	if *f.speed < 0 {
		return nil, nil, "", 0, badArgument("--speed must be >= 0, got %v", *f.speed)
	}
	if *f.simulationAmp <= 0 || *f.simulationAmp >= 0.99 {
		return nil, nil, "", 0, badArgument("--simulation_amp must be in (0,0.99), got %v", *f.simulationAmp)
	}
	if renderType == "scrape" {
		if *f.scrapeMaterial == "" {
			return nil, nil, "", 0, badArgument("--scrape_material is required when --type=scrape")
		}
		if *f.duration <= 0 {
			return nil, nil, "", 0, badArgument("--duration must be > 0 when --type=scrape, got %v", *f.duration)
		}
	}

	primaryMat, err := material.ParseImpactMaterial(*f.primaryMaterial)
	if err != nil {
		return nil, nil, "", 0, fmt.Errorf("--primary_material: %w", err)
	}
	secondaryMat, err := material.ParseImpactMaterial(*f.secondaryMaterial)
	if err != nil {
		return nil, nil, "", 0, fmt.Errorf("--secondary_material: %w", err)
	}

	if renderType == "scrape" {
		var ok bool
		scrapeMat, ok = material.ParseScrapeMaterial(*f.scrapeMaterial)
		if !ok {
			return nil, nil, "", 0, fmt.Errorf("--scrape_material: unknown scrape material %q", *f.scrapeMaterial)
		}
	}

	primary = synth.NewObjectData(1, primaryMat, *f.primaryAmp, *f.primaryResonance, *f.primaryMass)
	secondary = synth.NewObjectData(2, secondaryMat, *f.secondaryAmp, *f.secondaryResonance, *f.secondaryMass)
	return primary, secondary, renderType, scrapeMat, nil
}

func validateUnitInterval(flagName string, v float64) error {
	if v <= 0 || v >= 1 {
		return badArgument("%s must be in (0,1), got %v", flagName, v)
	}
	return nil
}
