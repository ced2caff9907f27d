package synth

import "github.com/audiomodal/clatter/material"

// ObjectData bundles the per-object audio parameters an AudioGenerator
// needs to synthesize collisions involving it (spec §3
// ClatterObjectData). Objects are created by the caller and registered
// with a Generator for lookup by ID.
type ObjectData struct {
	ID       uint32
	Material material.ImpactMaterial

	// Amp is the object's contribution to modal amplitude, in (0,1).
	Amp float64
	// Resonance scales modal decay time; clamped to [0, +inf) per the
	// resolved Open Question in spec §9 ("resonance is no longer
	// clamped above 1").
	Resonance float64
	// Mass in kg, > 0.
	Mass float64

	// ScrapeMaterial is optional; when unset, the generator defaults it
	// from Material's unsized family via material.DefaultScrapeMaterial.
	ScrapeMaterial *material.ScrapeMaterial

	// HasPreviousImpact and PreviousImpactTimeS record this object's own
	// last impact regardless of which pair it occurred in; the gating
	// decision itself (spec §4.4) uses per-pair state kept by the
	// generator, not these fields.
	HasPreviousImpact   bool
	PreviousImpactTimeS float64
}

// NewObjectData constructs an ObjectData, clamping Resonance into
// [0, +inf).
func NewObjectData(id uint32, mat material.ImpactMaterial, amp, resonance, mass float64) *ObjectData {
	if resonance < 0 {
		resonance = 0
	}
	return &ObjectData{
		ID:        id,
		Material:  mat,
		Amp:       amp,
		Resonance: resonance,
		Mass:      mass,
	}
}

// ResolvedScrapeMaterial returns the object's explicit scrape material,
// or the default for its impact material's unsized family.
func (o *ObjectData) ResolvedScrapeMaterial() material.ScrapeMaterial {
	if o.ScrapeMaterial != nil {
		return *o.ScrapeMaterial
	}
	return material.DefaultScrapeMaterial(o.Material.Unsized)
}
