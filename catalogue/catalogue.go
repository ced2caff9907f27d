// Package catalogue is the process-wide, lazily-populated cache of
// modal and scrape material data described in spec §4.3: each material's
// data is parsed from the embedded resource bundle at most once, on
// first demand, and never freed.
package catalogue

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/audiomodal/clatter/material"
)

//go:embed data/bundle.bin
var embeddedBundle []byte

var (
	bundleOnce sync.Once
	bundle     *parsedBundle
	bundleErr  error
)

func loadBundle() (*parsedBundle, error) {
	bundleOnce.Do(func() {
		bundle, bundleErr = parseBundle(embeddedBundle)
	})
	return bundle, bundleErr
}

var (
	impactOnce [material.NumImpactMaterials]sync.Once
	impactData [material.NumImpactMaterials]*ImpactMaterialData
	impactErr  [material.NumImpactMaterials]error

	scrapeOnce [material.NumScrapeMaterials]sync.Once
	scrapeData [material.NumScrapeMaterials]*ScrapeMaterialData
	scrapeErr  [material.NumScrapeMaterials]error
)

// LoadImpact idempotently loads the modal table for m from the embedded
// bundle. Concurrent calls for the same material collapse into exactly
// one parse (guarded by a per-material sync.Once), matching §4.3/§5.
func LoadImpact(m material.ImpactMaterial) error {
	id := m.ID()
	impactOnce[id].Do(func() {
		b, err := loadBundle()
		if err != nil {
			impactErr[id] = err
			return
		}
		data, ok := b.impact[id]
		if !ok {
			impactErr[id] = fmt.Errorf("%w: %s", ErrUnknownMaterial, m)
			return
		}
		impactData[id] = data
	})
	return impactErr[id]
}

// GetImpact returns the modal table for m. The caller must have called
// LoadImpact(m) first; otherwise ErrMaterialNotLoaded is returned.
func GetImpact(m material.ImpactMaterial) (*ImpactMaterialData, error) {
	id := m.ID()
	if impactData[id] == nil {
		if err := impactErr[id]; err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrMaterialNotLoaded, m)
	}
	return impactData[id], nil
}

// LoadScrape idempotently loads the roughness profile for m.
func LoadScrape(m material.ScrapeMaterial) error {
	id := int(m)
	if id < 0 || id >= material.NumScrapeMaterials {
		return fmt.Errorf("%w: scrape material id %d", ErrUnknownMaterial, id)
	}
	scrapeOnce[id].Do(func() {
		b, err := loadBundle()
		if err != nil {
			scrapeErr[id] = err
			return
		}
		data, ok := b.scrape[uint8(id)]
		if !ok {
			scrapeErr[id] = fmt.Errorf("%w: %s", ErrUnknownMaterial, m)
			return
		}
		scrapeData[id] = data
	})
	return scrapeErr[id]
}

// GetScrape returns the roughness profile for m. LoadScrape(m) must have
// been called first.
func GetScrape(m material.ScrapeMaterial) (*ScrapeMaterialData, error) {
	id := int(m)
	if id < 0 || id >= material.NumScrapeMaterials || scrapeData[id] == nil {
		if id >= 0 && id < material.NumScrapeMaterials {
			if err := scrapeErr[id]; err != nil {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrMaterialNotLoaded, m)
	}
	return scrapeData[id], nil
}

// Warm bulk pre-loads the given impact and scrape materials so a host
// can pay the one-shot bundle-read cost up front rather than on the
// first hot collision.
func Warm(impacts []material.ImpactMaterial, scrapes []material.ScrapeMaterial) error {
	for _, m := range impacts {
		if err := LoadImpact(m); err != nil {
			return err
		}
	}
	for _, m := range scrapes {
		if err := LoadScrape(m); err != nil {
			return err
		}
	}
	return nil
}

// ImpactMaterialFor selects the ImpactMaterial for an unsized family and
// object volume (m^3), per spec §4.3.
func ImpactMaterialFor(u material.UnsizedImpactMaterial, volumeM3 float64) material.ImpactMaterial {
	return material.NewImpactMaterial(u, material.SizeBucketForVolume(volumeM3))
}
