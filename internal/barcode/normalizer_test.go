package barcode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformRaw(width, height, channels int, sampleType SampleType, value float64) RawImage {
	pix := make([]float64, width*height*channels)
	for i := range pix {
		pix[i] = value
	}
	return RawImage{Width: width, Height: height, Channels: channels, Type: sampleType, Pix: pix}
}

func TestNormalize_Uint8IsIdentity(t *testing.T) {
	raw := RawImage{Width: 4, Height: 2, Channels: 3, Type: SampleUint8}
	for i := 0; i < 4*2*3; i++ {
		raw.Pix = append(raw.Pix, float64((i*37)%256))
	}

	got := Normalize(raw)

	require.Len(t, got.Pix, len(raw.Pix))
	for i, v := range raw.Pix {
		assert.Equal(t, uint8(v), got.Pix[i], "sample %d", i)
	}
}

func TestNormalize_PreservesGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  RawImage
	}{
		{"gray uint8", uniformRaw(7, 3, 1, SampleUint8, 12)},
		{"rgb float unit", uniformRaw(5, 5, 3, SampleFloat32, 0.25)},
		{"rgb float wide", uniformRaw(2, 9, 3, SampleFloat64, 200)},
		{"gray uint16", uniformRaw(3, 3, 1, SampleUint16, 1000)},
		{"empty", RawImage{Width: 0, Height: 0, Channels: 3, Type: SampleFloat64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.raw.Width, got.Width)
			assert.Equal(t, tt.raw.Height, got.Height)
			assert.Equal(t, tt.raw.Channels, got.Channels)
			assert.Len(t, got.Pix, len(tt.raw.Pix))
		})
	}
}

func TestNormalize_FloatScaling(t *testing.T) {
	tests := []struct {
		name       string
		sampleType SampleType
		pix        []float64
		want       []uint8
	}{
		{
			name:       "unit floats are scaled by 255 and truncated",
			sampleType: SampleFloat32,
			pix:        []float64{0, 0.1, 0.5, 0.999, 1.0},
			want:       []uint8{0, 25, 127, 254, 255},
		},
		{
			name:       "wide floats are truncated without scaling",
			sampleType: SampleFloat64,
			pix:        []float64{0, 1.5, 127.9, 254.2, 255},
			want:       []uint8{0, 1, 127, 254, 255},
		},
		{
			name:       "all zero takes the unit branch",
			sampleType: SampleFloat64,
			pix:        []float64{0, 0, 0, 0, 0},
			want:       []uint8{0, 0, 0, 0, 0},
		},
		{
			name:       "floats above 255 wrap instead of clamping",
			sampleType: SampleFloat64,
			pix:        []float64{10, 256, 300.7, 0, 0},
			want:       []uint8{10, 0, 44, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawImage{Width: len(tt.pix), Height: 1, Channels: 1, Type: tt.sampleType, Pix: tt.pix}
			got := Normalize(raw)
			assert.Equal(t, tt.want, got.Pix)
		})
	}
}

func TestNormalize_UnitFloatMatchesFloorOfScaled(t *testing.T) {
	raw := RawImage{Width: 101, Height: 1, Channels: 1, Type: SampleFloat64}
	for i := 0; i <= 100; i++ {
		raw.Pix = append(raw.Pix, float64(i)/100)
	}

	got := Normalize(raw)

	for i, v := range raw.Pix {
		want := uint8(math.Floor(v * 255))
		if got.Pix[i] != want {
			t.Errorf("sample %v: got %d, want %d", v, got.Pix[i], want)
		}
	}
}

func TestNormalize_IntegerTypesWrap(t *testing.T) {
	tests := []struct {
		name       string
		sampleType SampleType
		pix        []float64
		want       []uint8
	}{
		{"uint16", SampleUint16, []float64{0, 255, 256, 65535}, []uint8{0, 255, 0, 255}},
		{"int16", SampleInt16, []float64{-1, 100, 300, -256}, []uint8{255, 100, 44, 0}},
		{"int32", SampleInt32, []float64{70000, 42, 511, 1}, []uint8{112, 42, 255, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawImage{Width: 2, Height: 2, Channels: 1, Type: tt.sampleType, Pix: tt.pix}
			assert.Equal(t, tt.want, Normalize(raw).Pix)
		})
	}
}

func TestNormalize_NaNDisablesUnitScaling(t *testing.T) {
	raw := RawImage{Width: 3, Height: 1, Channels: 1, Type: SampleFloat64, Pix: []float64{0.9, math.NaN(), 200.7}}

	got := Normalize(raw)

	// NaN makes the maximum undefined, so samples keep their 0-255 scale
	assert.Equal(t, []uint8{0, 0, 200}, got.Pix)
	assert.True(t, math.IsNaN(maxSample(raw.Pix)))
}

func TestNormalize_NaNWithUnitSamples(t *testing.T) {
	raw := RawImage{Width: 2, Height: 1, Channels: 1, Type: SampleFloat32, Pix: []float64{0.5, math.NaN()}}

	assert.Equal(t, []uint8{0, 0}, Normalize(raw).Pix)
}

func TestNormalize_HalfGrayFloatImage(t *testing.T) {
	raw := uniformRaw(10, 10, 3, SampleFloat32, 0.5)

	got := Normalize(raw)

	require.Equal(t, 10, got.Width)
	require.Equal(t, 10, got.Height)
	require.Equal(t, 3, got.Channels)
	for i, v := range got.Pix {
		if v != 127 {
			t.Fatalf("sample %d: got %d, want 127", i, v)
		}
	}
}

func TestSampleType_String(t *testing.T) {
	assert.Equal(t, "float32", SampleFloat32.String())
	assert.Equal(t, "uint8", SampleUint8.String())
	assert.Equal(t, "unknown", SampleType(99).String())
	assert.True(t, SampleFloat64.IsFloat())
	assert.False(t, SampleInt16.IsFloat())
}
