package catalogue

import "errors"

// Error kinds per spec §7. Synthesis never raises; only catalogue loads
// and bundle parsing can fail.
var (
	ErrMaterialNotLoaded = errors.New("catalogue: material not loaded")
	ErrUnknownMaterial   = errors.New("catalogue: unknown material")
	ErrBundleCorrupt     = errors.New("catalogue: bundle corrupt")
)
