package synth

import "math"

// biquad is a direct-form-I second-order IIR filter, adapted from the
// teacher's dsp.Biquad (dsp/dsp.go) to float64 state/coefficients since
// the scrape synthesizer recomputes coefficients every chunk from the
// current speed and needs the extra headroom.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// setLowpassRBJ recomputes this biquad as an RBJ-cookbook low-pass with
// the given cutoff/sampleRate/Q, the same formula as the teacher's
// dsp.NewLowpass but applied in place so per-chunk recomputation does
// not allocate.
func (f *biquad) setLowpassRBJ(cutoffHz, sampleRate, q float64) {
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *biquad) process(input float64) float64 {
	output := f.b0*input + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

	f.x2 = f.x1
	f.x1 = input
	f.y2 = f.y1
	f.y1 = flushDenormal(output)

	return output
}
