package pcm

import (
	"math"
	"testing"
)

func TestEncode16Length(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	got := Encode16(samples)
	if len(got) != 2*len(samples) {
		t.Fatalf("len = %d, want %d", len(got), 2*len(samples))
	}
}

func TestEncode16RoundTrip(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.999, -0.999, 1, -1}
	enc := Encode16(samples)
	dec := Decode16(enc)
	for i, s := range samples {
		clamped := s
		if clamped > 1 {
			clamped = 1
		} else if clamped < -1 {
			clamped = -1
		}
		if math.Abs(float64(dec[i]-clamped)) > 1.0/32767 {
			t.Errorf("sample %d: got %v, want within 1/32767 of %v", i, dec[i], clamped)
		}
	}
}

func TestEncode16ClampsOutOfRange(t *testing.T) {
	enc := Encode16([]float32{5, -5})
	dec := Decode16(enc)
	if dec[0] <= 0.99 {
		t.Errorf("expected clamped-high sample close to 1.0, got %v", dec[0])
	}
	if dec[1] >= -0.99 {
		t.Errorf("expected clamped-low sample close to -1.0, got %v", dec[1])
	}
}
