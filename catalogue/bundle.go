package catalogue

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/audiomodal/clatter/material"
)

const bundleMagic = "CLAT"

// parsedBundle is the fully decoded contents of the embedded material
// resource: §4.7 of the specification. All multi-byte fields are
// little-endian.
type parsedBundle struct {
	version uint32
	impact  map[uint16]*ImpactMaterialData
	scrape  map[uint8]*ScrapeMaterialData
}

// parseBundle decodes the binary layout described in spec §4.7:
//
//	magic "CLAT", uint32 version, uint32 impactCount, uint32 scrapeCount,
//	impactCount * { uint16 id, uint16 numModes, f64 cf, numModes * (f64 freq, f64 powerDB, f64 decayMs) },
//	scrapeCount * { uint16 id, uint32 dsdxLen, f64 roughnessRatioExponent, dsdxLen * f64 },
//	then a fixed-order f64 density per unsized material.
//
// The spec's §4.7 describes a single "count" field; this parser resolves
// that ambiguity by using two explicit counts since the impact and
// scrape entry shapes differ (see DESIGN.md).
func parseBundle(data []byte) (*parsedBundle, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(bundleMagic))
	if _, err := r.Read(magic); err != nil {
		return nil, fmt.Errorf("catalogue: reading magic: %w", err)
	}
	if string(magic) != bundleMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBundleCorrupt, magic)
	}

	var version, impactCount, scrapeCount uint32
	for _, dst := range []*uint32{&version, &impactCount, &scrapeCount} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("%w: reading header: %v", ErrBundleCorrupt, err)
		}
	}

	b := &parsedBundle{
		version: version,
		impact:  make(map[uint16]*ImpactMaterialData, impactCount),
		scrape:  make(map[uint8]*ScrapeMaterialData, scrapeCount),
	}

	for i := uint32(0); i < impactCount; i++ {
		var id, numModes uint16
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("%w: impact entry %d id: %v", ErrBundleCorrupt, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &numModes); err != nil {
			return nil, fmt.Errorf("%w: impact entry %d numModes: %v", ErrBundleCorrupt, i, err)
		}
		var cf float64
		if err := binary.Read(r, binary.LittleEndian, &cf); err != nil {
			return nil, fmt.Errorf("%w: impact entry %d cf: %v", ErrBundleCorrupt, i, err)
		}
		modes := make([]Mode, numModes)
		for mi := uint16(0); mi < numModes; mi++ {
			var freq, power, decay float64
			if err := binary.Read(r, binary.LittleEndian, &freq); err != nil {
				return nil, fmt.Errorf("%w: impact entry %d mode %d freq: %v", ErrBundleCorrupt, i, mi, err)
			}
			if err := binary.Read(r, binary.LittleEndian, &power); err != nil {
				return nil, fmt.Errorf("%w: impact entry %d mode %d power: %v", ErrBundleCorrupt, i, mi, err)
			}
			if err := binary.Read(r, binary.LittleEndian, &decay); err != nil {
				return nil, fmt.Errorf("%w: impact entry %d mode %d decay: %v", ErrBundleCorrupt, i, mi, err)
			}
			if freq <= 0 || decay <= 0 {
				return nil, fmt.Errorf("%w: impact entry %d mode %d: non-positive freq/decay", ErrBundleCorrupt, i, mi)
			}
			modes[mi] = Mode{FrequencyHz: freq, PowerDB: power, DecayMs: decay}
		}
		b.impact[id] = &ImpactMaterialData{CF: cf, Modes: modes}
	}

	for i := uint32(0); i < scrapeCount; i++ {
		var id16 uint16
		if err := binary.Read(r, binary.LittleEndian, &id16); err != nil {
			return nil, fmt.Errorf("%w: scrape entry %d id: %v", ErrBundleCorrupt, i, err)
		}
		var dsdxLen uint32
		if err := binary.Read(r, binary.LittleEndian, &dsdxLen); err != nil {
			return nil, fmt.Errorf("%w: scrape entry %d dsdxLen: %v", ErrBundleCorrupt, i, err)
		}
		var exponent float64
		if err := binary.Read(r, binary.LittleEndian, &exponent); err != nil {
			return nil, fmt.Errorf("%w: scrape entry %d exponent: %v", ErrBundleCorrupt, i, err)
		}
		dsdx := make([]float64, dsdxLen)
		for di := uint32(0); di < dsdxLen; di++ {
			if err := binary.Read(r, binary.LittleEndian, &dsdx[di]); err != nil {
				return nil, fmt.Errorf("%w: scrape entry %d sample %d: %v", ErrBundleCorrupt, i, di, err)
			}
		}
		b.scrape[uint8(id16)] = &ScrapeMaterialData{Dsdx: dsdx, RoughnessRatioExponent: exponent}
	}

	families := material.AllUnsizedImpactMaterials()
	densities := make([]float64, len(families))
	for i := range densities {
		if err := binary.Read(r, binary.LittleEndian, &densities[i]); err != nil {
			return nil, fmt.Errorf("%w: density table entry %d: %v", ErrBundleCorrupt, i, err)
		}
	}
	for i, u := range families {
		d := densities[i]
		for size := material.MinSizeBucket; size <= material.MaxSizeBucket; size++ {
			id := material.NewImpactMaterial(u, size).ID()
			if entry, ok := b.impact[id]; ok {
				entry.Density = d
			}
		}
	}

	return b, nil
}
