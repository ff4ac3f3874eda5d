package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-student-scanner/internal/config"
	apperrors "go-student-scanner/internal/errors"
	"go-student-scanner/internal/logger"
	"go-student-scanner/internal/service"
	"go-student-scanner/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewHandler builds the gin engine serving the scanner API. gatherer may
// be nil, in which case /metrics is not mounted.
func NewHandler(svc service.ScanService, gatherer prometheus.Gatherer, cfg *config.Config) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	api := r.Group("/api")
	{
		api.POST("/read-barcode", readBarcode(svc, cfg))
		api.GET("/student-profile/:uid", studentProfile(svc, cfg))
		api.POST("/update-language", updateLanguage(svc, cfg))
	}
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func readBarcode(svc service.ScanService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ReadBarcodeRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		resp, err := svc.ReadBarcode(ctx, req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func studentProfile(svc service.ScanService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		resp, err := svc.GetProfile(ctx, c.Param("uid"))
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func updateLanguage(svc service.ScanService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.UpdateLanguageRequest
		if err := bindJSON(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		resp, err := svc.UpdateLanguage(ctx, req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Message: "Service is running",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// bindJSON decodes the body, distinguishing oversized bodies from bad JSON
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "Request body too large",
			StatusCode: http.StatusRequestEntityTooLarge,
			Cause:      err,
		}
	}
	return apperrors.NewValidationError("Invalid JSON body", err)
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.GetStatusCode(err)
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return apperrors.GetStatusCode(err)
	}
}

// isClientError reports errors caused by the request rather than the service
func isClientError(err error) bool {
	return apperrors.IsType(err, apperrors.ErrorTypeValidation) ||
		apperrors.IsType(err, apperrors.ErrorTypeNotFound)
}

func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	entry := logger.FromContext(c.Request.Context()).WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
	})
	if isClientError(err) {
		entry.Warn("Request rejected")
	} else {
		entry.Error("Request failed")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Success: false,
		Error:   http.StatusText(code),
		Message: message,
	})
}
