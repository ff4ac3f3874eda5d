package barcode

// Attempt names reported in Outcome.Attempts
const (
	AttemptDirect    = "direct"
	AttemptGrayscale = "grayscale"
)

// attemptStrategy prepares one candidate representation of the image.
// ok is false when the strategy does not apply to the image.
type attemptStrategy interface {
	Prepare(img NormalizedImage) (candidate NormalizedImage, ok bool)
	Name() string
}

// directAttempt hands the image to the decoder as-is
type directAttempt struct{}

func (directAttempt) Prepare(img NormalizedImage) (NormalizedImage, bool) {
	return img, true
}

func (directAttempt) Name() string { return AttemptDirect }

// grayscaleAttempt retries color images as a luminance reduction
type grayscaleAttempt struct{}

func (grayscaleAttempt) Prepare(img NormalizedImage) (NormalizedImage, bool) {
	if img.Channels != 3 {
		return NormalizedImage{}, false
	}
	return ToGrayscale(img), true
}

func (grayscaleAttempt) Name() string { return AttemptGrayscale }

// defaultAttempts is the fixed fallback chain
func defaultAttempts() []attemptStrategy {
	return []attemptStrategy{directAttempt{}, grayscaleAttempt{}}
}
