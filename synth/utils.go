package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

var negativeInfinity = math.Inf(-1)

func clampFloat64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// overlapAddBlock splits a convolution engine's full output into the
// next blockLen samples to emit (mixed with the previous call's tail)
// and the remaining samples to carry forward as the new tail, the same
// split piano/convolver.go uses to get gapless block-by-block
// convolution out of algo-dsp's OverlapAdd.
func overlapAddBlock(convOut []float64, tail []float64, blockLen int) ([]float64, []float64) {
	if len(convOut) < blockLen {
		out := make([]float64, blockLen)
		copy(out, convOut)
		return out, nil
	}

	full := make([]float64, len(convOut))
	copy(full, convOut)
	n := len(tail)
	if n > len(full) {
		n = len(full)
	}
	for i := 0; i < n; i++ {
		full[i] += tail[i]
	}

	out := make([]float64, blockLen)
	copy(out, full[:blockLen])
	newTail := make([]float64, len(full)-blockLen)
	copy(newTail, full[blockLen:])
	return out, newTail
}

// flushDenormal zeroes values small enough to be denormals, avoiding the
// performance cliff on some FPUs for long-decaying tails — the same
// role dspcore.FlushDenormals plays in piano/resonance.go.
func flushDenormal(x float64) float64 {
	return dspcore.FlushDenormals(x)
}
