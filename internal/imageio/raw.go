package imageio

import (
	"image"
	"image/color"

	"go-student-scanner/internal/barcode"
)

// ToRaw converts a decoded image into a RawImage. Gray images keep one
// channel; everything else becomes RGB with alpha dropped. 16-bit images
// are reported as SampleUint16 with their full sample values and 8-bit
// images as SampleUint8.
func ToRaw(img image.Image) barcode.RawImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		raw := newRaw(w, h, 1, barcode.SampleUint8)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				raw.Pix[y*w+x] = float64(v)
			}
		}
		return raw
	case *image.Gray16:
		raw := newRaw(w, h, 1, barcode.SampleUint16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				raw.Pix[y*w+x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return raw
	case *image.NRGBA64, *image.RGBA64:
		raw := newRaw(w, h, 3, barcode.SampleUint16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
				i := (y*w + x) * 3
				raw.Pix[i] = float64(c.R)
				raw.Pix[i+1] = float64(c.G)
				raw.Pix[i+2] = float64(c.B)
			}
		}
		return raw
	}

	raw := newRaw(w, h, 3, barcode.SampleUint8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*w + x) * 3
			raw.Pix[i] = float64(c.R)
			raw.Pix[i+1] = float64(c.G)
			raw.Pix[i+2] = float64(c.B)
		}
	}
	return raw
}

func newRaw(w, h, channels int, sampleType barcode.SampleType) barcode.RawImage {
	return barcode.RawImage{
		Width:    w,
		Height:   h,
		Channels: channels,
		Type:     sampleType,
		Pix:      make([]float64, w*h*channels),
	}
}
