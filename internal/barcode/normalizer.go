package barcode

import "math"

// Normalize converts a RawImage into 8-bit samples without touching geometry.
//
// Float images whose largest sample is <= 1.0 are treated as unit-scaled and
// multiplied by 255; other floats, including any image holding a NaN, are
// assumed to be on a 0-255 scale. All conversions truncate, and values
// outside [0,255] wrap like a C cast rather than being clamped.
func Normalize(raw RawImage) NormalizedImage {
	out := NormalizedImage{
		Width:    raw.Width,
		Height:   raw.Height,
		Channels: raw.Channels,
		Pix:      make([]uint8, len(raw.Pix)),
	}

	scale := 1.0
	if raw.Type.IsFloat() && maxSample(raw.Pix) <= 1.0 {
		scale = 255
	}

	for i, v := range raw.Pix {
		out.Pix[i] = castUint8(v * scale)
	}
	return out
}

// maxSample returns the largest sample, or NaN when any sample is NaN
func maxSample(pix []float64) float64 {
	// an empty grid falls into the unit-scale branch, same as all zeros
	m := 0.0
	for i, v := range pix {
		if math.IsNaN(v) {
			return v
		}
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// castUint8 truncates toward zero and keeps the low byte
func castUint8(v float64) uint8 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return uint8(int64(math.Trunc(v)))
}
