package validation

import (
	"fmt"

	apperrors "go-student-scanner/internal/errors"
)

// ImageLimits bounds the images accepted for scanning
type ImageLimits struct {
	MinWidth  int
	MinHeight int
	MaxPixels int64
}

// DefaultImageLimits returns limits suitable for phone photos
func DefaultImageLimits() ImageLimits {
	return ImageLimits{
		MinWidth:  1,
		MinHeight: 1,
		MaxPixels: 40_000_000,
	}
}

// ImageValidator checks image dimensions before pixels are decoded
type ImageValidator struct {
	limits ImageLimits
}

// NewImageValidator creates an image validator with default limits
func NewImageValidator() *ImageValidator {
	return &ImageValidator{limits: DefaultImageLimits()}
}

// NewImageValidatorWithLimits creates an image validator with custom limits
func NewImageValidatorWithLimits(limits ImageLimits) *ImageValidator {
	return &ImageValidator{limits: limits}
}

// ValidateDimensions rejects images that are too small to hold a barcode or
// too large to decode within the memory budget.
func (v *ImageValidator) ValidateDimensions(width, height int) error {
	if width < v.limits.MinWidth || height < v.limits.MinHeight {
		return apperrors.NewValidationError("Image is too small", nil).
			WithDetails(fmt.Sprintf("got %dx%d, need at least %dx%d", width, height, v.limits.MinWidth, v.limits.MinHeight))
	}
	if v.limits.MaxPixels > 0 && int64(width)*int64(height) > v.limits.MaxPixels {
		return apperrors.NewValidationError("Image exceeds pixel limit", nil).
			WithDetails(fmt.Sprintf("%dx%d exceeds %d pixels", width, height, v.limits.MaxPixels))
	}
	return nil
}
