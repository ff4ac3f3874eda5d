package service

import (
	"context"
	"errors"
	"time"

	"go-student-scanner/internal/barcode"
	apperrors "go-student-scanner/internal/errors"
	"go-student-scanner/internal/imageio"
	"go-student-scanner/internal/logger"
	"go-student-scanner/internal/observer"
	"go-student-scanner/internal/repository"
	"go-student-scanner/internal/storage"
	"go-student-scanner/pkg/models"
	"go-student-scanner/pkg/validation"
)

const (
	messageDetected     = "Barcode detected"
	messageNotDetected  = "No barcode detected"
	messageFound        = "Student found"
	messageNotFound     = "Student not found"
	placeholderName     = "Student"
	defaultLanguage     = "English"
	defaultContentType  = "image/jpeg"
	defaultStoreTimeout = 10 * time.Second
)

// ScanService defines the operations behind the HTTP API
type ScanService interface {
	// ReadBarcode decodes a base64 photo, finds a barcode and greets the student
	ReadBarcode(ctx context.Context, req models.ReadBarcodeRequest) (*models.ReadBarcodeResponse, error)

	// GetProfile returns the stored profile for a UID
	GetProfile(ctx context.Context, uid string) (*models.StudentProfileResponse, error)

	// UpdateLanguage changes a student's language preference
	UpdateLanguage(ctx context.Context, req models.UpdateLanguageRequest) (*models.UpdateLanguageResponse, error)
}

// Options tunes a scan service
type Options struct {
	DefaultLanguage string
	StoreTimeout    time.Duration
	MaxImagePixels  int64
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		DefaultLanguage: defaultLanguage,
		StoreTimeout:    defaultStoreTimeout,
		MaxImagePixels:  validation.DefaultImageLimits().MaxPixels,
	}
}

type scanService struct {
	reader   *barcode.Reader
	students repository.StudentRepository
	archive  storage.ImageArchive
	events   observer.Subject
	requests *validation.RequestValidator
	images   *validation.ImageValidator
	options  Options
}

// NewScanService creates a scan service. archive and events may be nil.
func NewScanService(
	reader *barcode.Reader,
	students repository.StudentRepository,
	archive storage.ImageArchive,
	events observer.Subject,
	options Options,
) ScanService {
	if options.DefaultLanguage == "" {
		options.DefaultLanguage = defaultLanguage
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = defaultStoreTimeout
	}
	limits := validation.DefaultImageLimits()
	if options.MaxImagePixels > 0 {
		limits.MaxPixels = options.MaxImagePixels
	}
	if archive == nil {
		archive = storage.NewNopArchive()
	}

	return &scanService{
		reader:   reader,
		students: students,
		archive:  archive,
		events:   events,
		requests: validation.NewRequestValidator(),
		images:   validation.NewImageValidatorWithLimits(limits),
		options:  options,
	}
}

func (s *scanService) ReadBarcode(ctx context.Context, req models.ReadBarcodeRequest) (*models.ReadBarcodeResponse, error) {
	if err := s.requests.ValidateReadBarcode(req); err != nil {
		return nil, err
	}

	start := time.Now()
	s.publish(ctx, observer.ScanEvent{EventType: observer.ScanStarted})

	raw, err := s.loadImage(ctx, req)
	if err != nil {
		return nil, s.scanFailed(ctx, start, nil, err)
	}

	outcome, err := s.reader.ReadRaw(raw)
	if err != nil {
		if errors.Is(err, barcode.ErrDecoderUnavailable) {
			err = apperrors.NewUnavailableError("Barcode decoding is unavailable", err)
		} else {
			err = apperrors.NewProcessingError("Barcode decoding failed", err)
		}
		return nil, s.scanFailed(ctx, start, outcome.Attempts, err)
	}

	if !outcome.Found {
		s.publish(ctx, observer.ScanEvent{
			EventType:      observer.BarcodeNotFound,
			Attempts:       outcome.Attempts,
			ProcessingTime: time.Since(start),
			Success:        true,
		})
		return &models.ReadBarcodeResponse{
			Success: false,
			Message: messageNotDetected,
		}, nil
	}

	symbol := outcome.Symbol
	s.publish(ctx, observer.ScanEvent{
		EventType:      observer.BarcodeDetected,
		Barcode:        symbol,
		Attempts:       outcome.Attempts,
		ProcessingTime: time.Since(start),
		Success:        true,
	})

	return &models.ReadBarcodeResponse{
		Success:   true,
		Barcode:   &symbol,
		FirstName: s.greetingName(ctx, symbol),
		Message:   messageDetected,
	}, nil
}

// loadImage turns the request payload into raw samples, archiving the
// original bytes on the way.
func (s *scanService) loadImage(ctx context.Context, req models.ReadBarcodeRequest) (barcode.RawImage, error) {
	data, err := imageio.DecodeBase64(req.Image)
	if err != nil {
		return barcode.RawImage{}, apperrors.NewValidationError("Invalid base64 image data", err)
	}

	width, height, err := imageio.Dimensions(data)
	if err != nil {
		return barcode.RawImage{}, apperrors.NewValidationError("Unsupported or corrupt image", err)
	}
	if err := s.images.ValidateDimensions(width, height); err != nil {
		return barcode.RawImage{}, err
	}

	img, format, err := imageio.Decode(data)
	if err != nil {
		return barcode.RawImage{}, apperrors.NewValidationError("Unsupported or corrupt image", err)
	}

	s.archiveImage(ctx, data, contentTypeFor(format, req.Format))
	return imageio.ToRaw(img), nil
}

// archiveImage stores the upload. Failures never fail the scan.
func (s *scanService) archiveImage(ctx context.Context, data []byte, contentType string) {
	ctx, cancel := context.WithTimeout(ctx, s.options.StoreTimeout)
	defer cancel()

	name, err := s.archive.Archive(ctx, data, contentType)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to archive scan image")
		return
	}
	if name != "" {
		logger.FromContext(ctx).WithField("blob", name).Debug("Scan image archived")
	}
}

// greetingName resolves the firstName for a detected barcode: the first
// token of the name, a placeholder for an empty name, nil when no record
// exists or the lookup fails.
func (s *scanService) greetingName(ctx context.Context, uid string) *string {
	student, err := s.findStudent(ctx, uid)
	if err != nil {
		if !errors.Is(err, repository.ErrStudentNotFound) {
			logger.FromContext(ctx).WithError(err).WithField("uid", uid).Warn("Student lookup failed")
		}
		return nil
	}

	name := placeholderName
	if student.FullName() != "" {
		name = student.FirstName()
	}
	return &name
}

func (s *scanService) GetProfile(ctx context.Context, uid string) (*models.StudentProfileResponse, error) {
	if err := s.requests.ValidateUID(uid); err != nil {
		return nil, err
	}

	student, err := s.findStudent(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, apperrors.NewNotFoundError(messageNotFound, err)
		}
		return nil, storeError(err)
	}

	return &models.StudentProfileResponse{
		Success:   true,
		UID:       uid,
		FirstName: student.FirstName(),
		FullName:  student.Name,
		Number:    student.Number,
		Language:  student.LanguageOr(s.options.DefaultLanguage),
		Message:   messageFound,
	}, nil
}

// findStudent looks up a UID and reports the result to observers
func (s *scanService) findStudent(ctx context.Context, uid string) (*repository.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, s.options.StoreTimeout)
	defer cancel()

	start := time.Now()
	student, err := s.students.FindByUID(ctx, uid)

	event := observer.ScanEvent{
		EventType:      observer.ProfileLookup,
		UID:            uid,
		ProcessingTime: time.Since(start),
		Result:         observer.ResultFound,
		Success:        err == nil,
	}
	switch {
	case errors.Is(err, repository.ErrStudentNotFound):
		event.Result = observer.ResultNotFound
	case err != nil:
		event.Result = observer.ResultError
		event.ErrorMessage = err.Error()
	}
	s.publish(ctx, event)

	return student, err
}

func (s *scanService) UpdateLanguage(ctx context.Context, req models.UpdateLanguageRequest) (*models.UpdateLanguageResponse, error) {
	if err := s.requests.ValidateUpdateLanguage(req); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.options.StoreTimeout)
	defer cancel()

	start := time.Now()
	students, err := s.students.UpdateLanguage(storeCtx, req.UID, req.Language)
	event := observer.ScanEvent{
		EventType:      observer.LanguageUpdated,
		UID:            req.UID,
		ProcessingTime: time.Since(start),
		Success:        err == nil,
		Metadata:       map[string]interface{}{"language": req.Language, "rows": len(students)},
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	s.publish(ctx, event)

	if err != nil {
		return nil, storeError(err)
	}

	records := make([]models.StudentRecord, 0, len(students))
	for _, st := range students {
		records = append(records, models.StudentRecord{
			UID:      st.UID,
			Name:     st.Name,
			Number:   st.Number,
			Language: st.Language,
		})
	}
	return &models.UpdateLanguageResponse{Success: true, Data: records}, nil
}

// scanFailed publishes a failure event and returns err unchanged
func (s *scanService) scanFailed(ctx context.Context, start time.Time, attempts []string, err error) error {
	s.publish(ctx, observer.ScanEvent{
		EventType:      observer.ScanFailed,
		Attempts:       attempts,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
	return err
}

func (s *scanService) publish(ctx context.Context, event observer.ScanEvent) {
	if s.events == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestID(ctx)
	}
	s.events.NotifyObservers(ctx, event)
}

// storeError maps repository failures to application errors
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidUID):
		return apperrors.NewValidationError("UID cannot be empty", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Student store timed out", err)
	default:
		return apperrors.NewInternalError("Student store request failed", err)
	}
}

// requestID reads the id the transport attached to the request logger
func requestID(ctx context.Context) string {
	if id, ok := logger.FromContext(ctx).Data["request_id"].(string); ok {
		return id
	}
	return ""
}

// contentTypeFor prefers the detected format over the caller's hint
func contentTypeFor(format, hint string) string {
	if format != "" {
		return "image/" + format
	}
	if hint != "" {
		return hint
	}
	return defaultContentType
}
