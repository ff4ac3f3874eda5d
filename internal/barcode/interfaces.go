package barcode

import "errors"

// ErrDecoderUnavailable is returned by a Decoder that cannot run at all.
// Reader propagates it instead of treating it as an empty attempt.
var ErrDecoderUnavailable = errors.New("barcode: decoding capability unavailable")

// Decoder extracts symbol values from a normalized image
type Decoder interface {
	// Decode returns every symbol found, in the order the backend reports
	// them. An error means the image could not be processed.
	Decode(img NormalizedImage) ([]string, error)
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(img NormalizedImage) ([]string, error)

func (f DecoderFunc) Decode(img NormalizedImage) ([]string, error) {
	return f(img)
}

// unavailableDecoder stands in when no backend is configured
type unavailableDecoder struct{}

// NewUnavailableDecoder returns a Decoder that always fails with ErrDecoderUnavailable
func NewUnavailableDecoder() Decoder {
	return unavailableDecoder{}
}

func (unavailableDecoder) Decode(NormalizedImage) ([]string, error) {
	return nil, ErrDecoderUnavailable
}
