package barcode

// SampleType identifies the numeric representation of RawImage samples
type SampleType int

const (
	SampleUint8 SampleType = iota
	SampleUint16
	SampleInt16
	SampleInt32
	SampleFloat32
	SampleFloat64
)

// IsFloat reports whether the sample type is floating point
func (t SampleType) IsFloat() bool {
	return t == SampleFloat32 || t == SampleFloat64
}

func (t SampleType) String() string {
	switch t {
	case SampleUint8:
		return "uint8"
	case SampleUint16:
		return "uint16"
	case SampleInt16:
		return "int16"
	case SampleInt32:
		return "int32"
	case SampleFloat32:
		return "float32"
	case SampleFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// RawImage is an unprocessed pixel grid. Samples are row-major with
// interleaved channels; every sample type is carried in a float64, which
// represents all supported integer types exactly.
type RawImage struct {
	Width    int
	Height   int
	Channels int
	Type     SampleType
	Pix      []float64
}

// NormalizedImage is a pixel grid of 8-bit samples with 1 (gray) or 3 (RGB) channels
type NormalizedImage struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// At returns the samples of the pixel at (x, y)
func (n NormalizedImage) At(x, y int) []uint8 {
	i := (y*n.Width + x) * n.Channels
	return n.Pix[i : i+n.Channels]
}

// Outcome is the terminal state of a decode run. Symbol is only meaningful
// when Found is true, and is never empty in that case.
type Outcome struct {
	Symbol   string
	Found    bool
	Attempts []string
}
