package material

// density is the per-unsized-material density in kg/m^3, shared across
// all size buckets of that family. Values are representative order-of-
// magnitude figures for the named material class, not a measured table.
var density = [numUnsizedImpactMaterials]float64{
	Glass:       2500,
	Stone:       2700,
	Metal:       7800,
	WoodHard:    900,
	WoodMedium:  650,
	WoodSoft:    450,
	Ceramic:     2400,
	Cardboard:   250,
	Fabric:      300,
	Leaf:        150,
	Paper:       800,
	PlasticHard: 1400,
	PlasticSoft: 950,
	Rubber:      1100,
}

// DensityOf returns the density (kg/m^3) for an unsized material family.
func DensityOf(u UnsizedImpactMaterial) float64 {
	if int(u) < 0 || int(u) >= len(density) {
		return 1000
	}
	return density[u]
}
