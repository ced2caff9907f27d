// Package pcm implements the little-endian PCM16 sample conversion used
// by synth.Buffer and the WAV writer in cmd/clatter, grounded on the
// same byte-level little-endian convention the teacher's WAV path
// (github.com/cwbudde/wav, RIFF/LE) uses throughout.
package pcm

const scale = 32767.5

// Encode16 clamps each sample to [-1, 1], scales to the int16 range, and
// writes a little-endian byte sequence of length 2*len(samples).
func Encode16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(float64(s) * scale)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// Decode16 is the inverse of Encode16, used by tests to verify the
// PCM round-trip invariant (spec §8 property 5).
func Decode16(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
		out[i] = float32(float64(v) / scale)
	}
	return out
}
