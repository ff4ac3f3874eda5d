package barcode

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDecoder replays scripted responses and records every image it sees
type recordingDecoder struct {
	responses []decodeResponse
	calls     []NormalizedImage
}

type decodeResponse struct {
	symbols []string
	err     error
}

func (d *recordingDecoder) Decode(img NormalizedImage) ([]string, error) {
	d.calls = append(d.calls, img)
	if len(d.calls) > len(d.responses) {
		return nil, fmt.Errorf("unexpected call %d", len(d.calls))
	}
	r := d.responses[len(d.calls)-1]
	return r.symbols, r.err
}

func colorImage(width, height int) NormalizedImage {
	img := NormalizedImage{Width: width, Height: height, Channels: 3, Pix: make([]uint8, width*height*3)}
	for i := range img.Pix {
		img.Pix[i] = uint8((i * 53) % 256)
	}
	return img
}

func grayImage(width, height int) NormalizedImage {
	img := NormalizedImage{Width: width, Height: height, Channels: 1, Pix: make([]uint8, width*height)}
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 256)
	}
	return img
}

func TestReader_DirectHitSkipsFallback(t *testing.T) {
	decoder := &recordingDecoder{responses: []decodeResponse{
		{symbols: []string{"STU12345"}},
	}}
	reader := NewReader(decoder)

	outcome, err := reader.Read(colorImage(4, 4))

	require.NoError(t, err)
	assert.True(t, outcome.Found)
	assert.Equal(t, "STU12345", outcome.Symbol)
	assert.Equal(t, []string{AttemptDirect}, outcome.Attempts)
	assert.Len(t, decoder.calls, 1)
	assert.Equal(t, 3, decoder.calls[0].Channels)
}

func TestReader_FirstSymbolWins(t *testing.T) {
	decoder := &recordingDecoder{responses: []decodeResponse{
		{symbols: []string{"B-SECOND", "A-FIRST"}},
	}}

	outcome, err := NewReader(decoder).Read(grayImage(3, 3))

	require.NoError(t, err)
	assert.Equal(t, "B-SECOND", outcome.Symbol)
}

func TestReader_GrayscaleFallback(t *testing.T) {
	tests := []struct {
		name   string
		direct decodeResponse
	}{
		{"direct attempt errors", decodeResponse{err: errors.New("unsupported layout")}},
		{"direct attempt finds nothing", decodeResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := &recordingDecoder{responses: []decodeResponse{
				tt.direct,
				{symbols: []string{"STU777"}},
			}}
			img := colorImage(5, 3)

			outcome, err := NewReader(decoder).Read(img)

			require.NoError(t, err)
			assert.True(t, outcome.Found)
			assert.Equal(t, "STU777", outcome.Symbol)
			assert.Equal(t, []string{AttemptDirect, AttemptGrayscale}, outcome.Attempts)
			require.Len(t, decoder.calls, 2)

			gray := decoder.calls[1]
			require.Equal(t, 1, gray.Channels)
			require.Equal(t, img.Width, gray.Width)
			require.Equal(t, img.Height, gray.Height)
			for y := 0; y < img.Height; y++ {
				for x := 0; x < img.Width; x++ {
					p := img.At(x, y)
					want := uint8(math.Floor(0.2989*float64(p[0]) + 0.5870*float64(p[1]) + 0.1140*float64(p[2])))
					assert.Equal(t, want, gray.At(x, y)[0], "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestReader_AlwaysFailingDecoder(t *testing.T) {
	failing := decodeResponse{err: errors.New("boom")}

	t.Run("color image gets two attempts", func(t *testing.T) {
		decoder := &recordingDecoder{responses: []decodeResponse{failing, failing}}

		outcome, err := NewReader(decoder).Read(colorImage(2, 2))

		require.NoError(t, err)
		assert.False(t, outcome.Found)
		assert.Empty(t, outcome.Symbol)
		assert.Len(t, decoder.calls, 2)
	})

	t.Run("gray image gets one attempt", func(t *testing.T) {
		decoder := &recordingDecoder{responses: []decodeResponse{failing}}

		outcome, err := NewReader(decoder).Read(grayImage(2, 2))

		require.NoError(t, err)
		assert.False(t, outcome.Found)
		assert.Equal(t, []string{AttemptDirect}, outcome.Attempts)
		assert.Len(t, decoder.calls, 1)
	})
}

func TestReader_EmptySymbolIsNotAResult(t *testing.T) {
	decoder := &recordingDecoder{responses: []decodeResponse{{symbols: []string{""}}}}

	outcome, err := NewReader(decoder).Read(grayImage(2, 2))

	require.NoError(t, err)
	assert.False(t, outcome.Found)
}

func TestReader_DecoderUnavailablePropagates(t *testing.T) {
	reader := NewReader(NewUnavailableDecoder())

	_, err := reader.Read(colorImage(2, 2))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecoderUnavailable))
}

func TestReader_ReadRawNormalizesFirst(t *testing.T) {
	var seen NormalizedImage
	decoder := DecoderFunc(func(img NormalizedImage) ([]string, error) {
		seen = img
		return []string{"STU12345"}, nil
	})

	outcome, err := NewReader(decoder).ReadRaw(uniformRaw(10, 10, 3, SampleFloat64, 0.5))

	require.NoError(t, err)
	assert.Equal(t, "STU12345", outcome.Symbol)
	assert.Equal(t, uint8(127), seen.Pix[0])
}

func TestToGrayscale_SingleChannelUnchanged(t *testing.T) {
	img := grayImage(3, 2)
	assert.Equal(t, img, ToGrayscale(img))
}

func TestToGrayscale_Extremes(t *testing.T) {
	img := NormalizedImage{Width: 3, Height: 1, Channels: 3, Pix: []uint8{
		255, 255, 255,
		0, 0, 0,
		255, 0, 0,
	}}

	gray := ToGrayscale(img)

	// weights sum to 0.9999, so white truncates to 254
	assert.Equal(t, []uint8{254, 0, 76}, gray.Pix)
}
