package validation

import (
	"strings"
	"unicode"

	apperrors "go-student-scanner/internal/errors"
	"go-student-scanner/pkg/models"
)

const (
	// DefaultMaxUIDLength bounds UID path parameters and payload fields
	DefaultMaxUIDLength = 128

	// DefaultMaxLanguageLength bounds language preference values
	DefaultMaxLanguageLength = 64
)

// RequestValidator checks the shape of incoming API requests
type RequestValidator struct {
	maxUIDLength      int
	maxLanguageLength int
}

// NewRequestValidator creates a request validator with default limits
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		maxUIDLength:      DefaultMaxUIDLength,
		maxLanguageLength: DefaultMaxLanguageLength,
	}
}

// NewRequestValidatorWithLimits creates a request validator with custom limits
func NewRequestValidatorWithLimits(maxUIDLength, maxLanguageLength int) *RequestValidator {
	return &RequestValidator{
		maxUIDLength:      maxUIDLength,
		maxLanguageLength: maxLanguageLength,
	}
}

// ValidateReadBarcode requires a non-blank image payload
func (v *RequestValidator) ValidateReadBarcode(req models.ReadBarcodeRequest) error {
	if strings.TrimSpace(req.Image) == "" {
		return apperrors.NewValidationError("Missing 'image' in request", nil)
	}
	return nil
}

// ValidateUID checks a student identifier
func (v *RequestValidator) ValidateUID(uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return apperrors.NewValidationError("UID cannot be empty", nil)
	}
	if len(uid) > v.maxUIDLength {
		return apperrors.NewValidationError("UID is too long", nil)
	}
	if strings.IndexFunc(uid, unicode.IsControl) >= 0 {
		return apperrors.NewValidationError("UID contains control characters", nil)
	}
	return nil
}

// ValidateUpdateLanguage requires both fields and applies the UID rules
func (v *RequestValidator) ValidateUpdateLanguage(req models.UpdateLanguageRequest) error {
	if strings.TrimSpace(req.UID) == "" || strings.TrimSpace(req.Language) == "" {
		return apperrors.NewValidationError("Missing uid or language", nil)
	}
	if err := v.ValidateUID(req.UID); err != nil {
		return err
	}
	if len(strings.TrimSpace(req.Language)) > v.maxLanguageLength {
		return apperrors.NewValidationError("Language is too long", nil)
	}
	return nil
}
