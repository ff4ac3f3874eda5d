package barcode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var errEmptyImage = errors.New("image has no pixels")

// gozxingDecoder runs one gozxing reader per configured symbology
type gozxingDecoder struct {
	formats []Format
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewGozxingDecoder creates a pure-Go Decoder backed by gozxing
func NewGozxingDecoder(opts DecoderOptions) Decoder {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = AllFormats()
	}

	hints := make(map[gozxing.DecodeHintType]interface{})
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if opts.PureBarcode {
		hints[gozxing.DecodeHintType_PURE_BARCODE] = true
	}

	return &gozxingDecoder{formats: formats, hints: hints}
}

// Decode tries every configured reader on the same bitmap. Reader failures
// (not found, checksum, format) only mean that symbology is absent.
func (d *gozxingDecoder) Decode(img NormalizedImage) ([]string, error) {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) == 0 {
		return nil, errEmptyImage
	}

	src, err := toImage(img)
	if err != nil {
		return nil, err
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(src)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize image: %w", err)
	}

	var symbols []string
	for _, f := range d.formats {
		reader := newFormatReader(f)
		if reader == nil {
			continue
		}
		result, err := reader.Decode(bitmap, d.hints)
		if err != nil || result == nil {
			continue
		}
		if text := result.GetText(); text != "" {
			symbols = append(symbols, text)
		}
	}
	return symbols, nil
}

func newFormatReader(f Format) gozxing.Reader {
	switch f {
	case FormatQR:
		return qrcode.NewQRCodeReader()
	case FormatDataMatrix:
		return datamatrix.NewDataMatrixReader()
	case FormatAztec:
		return aztec.NewAztecReader()
	case FormatCode128:
		return oned.NewCode128Reader()
	case FormatCode39:
		return oned.NewCode39Reader()
	case FormatCode93:
		return oned.NewCode93Reader()
	case FormatEAN8:
		return oned.NewEAN8Reader()
	case FormatEAN13:
		return oned.NewEAN13Reader()
	case FormatUPCA:
		return oned.NewUPCAReader()
	case FormatUPCE:
		return oned.NewUPCEReader()
	case FormatITF:
		return oned.NewITFReader()
	case FormatCodabar:
		return oned.NewCodaBarReader()
	default:
		return nil
	}
}

// toImage exposes a NormalizedImage through the image.Image interface
func toImage(img NormalizedImage) (image.Image, error) {
	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.Channels {
	case 1:
		if len(img.Pix) < img.Width*img.Height {
			return nil, fmt.Errorf("gray image needs %d samples, got %d", img.Width*img.Height, len(img.Pix))
		}
		return &image.Gray{Pix: img.Pix, Stride: img.Width, Rect: rect}, nil
	case 3:
		n := img.Width * img.Height
		if len(img.Pix) < n*3 {
			return nil, fmt.Errorf("rgb image needs %d samples, got %d", n*3, len(img.Pix))
		}
		rgba := image.NewNRGBA(rect)
		for i := 0; i < n; i++ {
			copy(rgba.Pix[i*4:i*4+3], img.Pix[i*3:i*3+3])
			rgba.Pix[i*4+3] = 0xff
		}
		return rgba, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", img.Channels)
	}
}
