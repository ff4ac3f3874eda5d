package barcode

// Luminance weights applied by the grayscale fallback
const (
	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140
)

// ToGrayscale reduces a 3-channel image to a single channel using fixed
// luminance weights, truncating each pixel to uint8. Single-channel input is
// returned unchanged.
func ToGrayscale(img NormalizedImage) NormalizedImage {
	if img.Channels == 1 {
		return img
	}

	n := img.Width * img.Height
	gray := NormalizedImage{
		Width:    img.Width,
		Height:   img.Height,
		Channels: 1,
		Pix:      make([]uint8, n),
	}
	for i := 0; i < n; i++ {
		p := img.Pix[i*img.Channels : i*img.Channels+3]
		l := float64(p[0])*lumaR + float64(p[1])*lumaG + float64(p[2])*lumaB
		gray.Pix[i] = uint8(l)
	}
	return gray
}
