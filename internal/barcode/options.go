package barcode

import (
	"fmt"
	"strings"
)

// Format represents a barcode symbology
type Format int

const (
	FormatUnknown Format = iota
	FormatQR
	FormatDataMatrix
	FormatAztec
	FormatCode128
	FormatCode39
	FormatCode93
	FormatEAN8
	FormatEAN13
	FormatUPCA
	FormatUPCE
	FormatITF
	FormatCodabar
)

var formatNames = map[Format]string{
	FormatQR:         "qr_code",
	FormatDataMatrix: "data_matrix",
	FormatAztec:      "aztec",
	FormatCode128:    "code_128",
	FormatCode39:     "code_39",
	FormatCode93:     "code_93",
	FormatEAN8:       "ean_8",
	FormatEAN13:      "ean_13",
	FormatUPCA:       "upc_a",
	FormatUPCE:       "upc_e",
	FormatITF:        "itf",
	FormatCodabar:    "codabar",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat maps a symbology name such as "code_128" or "QR_CODE" to a Format
func ParseFormat(name string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == normalized {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unsupported barcode format: %q", name)
}

// AllFormats lists every symbology the default decoder understands, 1-D first
func AllFormats() []Format {
	return []Format{
		FormatCode128,
		FormatCode39,
		FormatCode93,
		FormatEAN13,
		FormatEAN8,
		FormatUPCA,
		FormatUPCE,
		FormatITF,
		FormatCodabar,
		FormatQR,
		FormatDataMatrix,
		FormatAztec,
	}
}

// DecoderOptions configures the gozxing-backed decoder
type DecoderOptions struct {
	// Formats constrains the symbologies searched; empty means AllFormats
	Formats []Format

	// TryHarder trades speed for a more exhaustive search
	TryHarder bool

	// PureBarcode hints that the image holds only an unrotated barcode
	PureBarcode bool
}

// DefaultDecoderOptions returns options tuned for phone photos of ID cards
func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{
		Formats:   AllFormats(),
		TryHarder: true,
	}
}

// WithFormats restricts decoding to the given symbologies
func (opts DecoderOptions) WithFormats(formats ...Format) DecoderOptions {
	opts.Formats = append([]Format(nil), formats...)
	return opts
}

// WithTryHarder toggles exhaustive search
func (opts DecoderOptions) WithTryHarder(enabled bool) DecoderOptions {
	opts.TryHarder = enabled
	return opts
}

// WithPureBarcode toggles the pure-barcode hint
func (opts DecoderOptions) WithPureBarcode(enabled bool) DecoderOptions {
	opts.PureBarcode = enabled
	return opts
}
