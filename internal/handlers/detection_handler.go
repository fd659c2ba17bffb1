package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"amount-detection/internal/config"
	"amount-detection/internal/dto"
	"amount-detection/internal/errors"
	"amount-detection/internal/models"
	"amount-detection/internal/ocr"
	"amount-detection/internal/services"

	"github.com/labstack/echo/v4"
)

// allowedUploadTypes maps accepted upload content types to the file
// extension handed to the recognizer
var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// Input sanitization patterns: angle brackets, script URLs and inline event
// handlers are stripped before the text reaches the pipeline
var (
	angleBracketPattern = regexp.MustCompile(`[<>]`)
	scriptURLPattern    = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// DetectionHandler handles amount detection HTTP requests
type DetectionHandler struct {
	detector   services.DetectionServiceInterface
	recognizer ocr.RecognizerInterface
	cfg        config.DetectionConfig
	metrics    services.MetricsRecorderInterface
	logger     *slog.Logger
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(
	detector services.DetectionServiceInterface,
	recognizer ocr.RecognizerInterface,
	cfg config.DetectionConfig,
	metrics services.MetricsRecorderInterface,
	logger *slog.Logger,
) *DetectionHandler {
	return &DetectionHandler{
		detector:   detector,
		recognizer: recognizer,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// DetectText analyzes plain text for monetary amounts
// @Summary Detect amounts in text
// @Description Extract, normalize and classify monetary amounts from raw bill or receipt text
// @Tags Detection
// @Accept json
// @Produce json
// @Param request body dto.DetectTextRequest true "Document text"
// @Success 200 {object} dto.DetectionResponse "Detection result"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Missing or invalid text"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /detect-amounts-text [post]
func (h *DetectionHandler) DetectText(c echo.Context) error {
	var req dto.DetectTextRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Request body must be valid JSON"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails("text: is required"))
	}

	text := sanitizeText(req.Text)
	if strings.TrimSpace(text) == "" {
		return SendError(c, errors.DetectionInputEmpty)
	}
	if len(text) > h.cfg.MaxTextLength {
		return SendError(c, errors.ValidationTextTooLong)
	}

	start := time.Now()
	result := h.detector.ProcessText(c.Request().Context(), text)
	elapsed := time.Since(start)
	h.metrics.RecordProcessingTime("detection.text", elapsed)

	h.logger.Info("text detection processed",
		"status", result.Status,
		"amounts", len(result.Amounts),
		"duration_ms", elapsed.Milliseconds(),
	)

	return h.respond(c, result, elapsed)
}

// DetectImage analyzes an uploaded image for monetary amounts
// @Summary Detect amounts in an image
// @Description Run OCR on an uploaded bill or receipt image, then extract, normalize and classify monetary amounts
// @Tags Detection
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Bill or receipt image (JPEG, PNG, GIF or PDF, max 10MB)"
// @Success 200 {object} dto.DetectionResponse "Detection result"
// @Failure 400 {object} errors.ErrorResponse "UPLOAD_001 - Missing image file"
// @Failure 413 {object} errors.ErrorResponse "UPLOAD_002 - File too large"
// @Failure 415 {object} errors.ErrorResponse "UPLOAD_003 - Unsupported file type"
// @Failure 503 {object} errors.ErrorResponse "OCR_001 - Text recognition unavailable"
// @Router /detect-amounts-image [post]
func (h *DetectionHandler) DetectImage(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return SendError(c, errors.UploadMissingFile)
	}

	if fileHeader.Size > h.cfg.MaxUploadBytes {
		h.metrics.IncrementCounter("upload.rejected", map[string]string{"reason": "too_large"})
		return SendError(c, errors.UploadFileTooLarge)
	}

	data, ext, err := h.readUpload(fileHeader)
	if err != nil {
		if errResp, ok := err.(*uploadError); ok {
			h.metrics.IncrementCounter("upload.rejected", map[string]string{"reason": errResp.reason})
			return SendError(c, errResp.code)
		}
		return SendSystemError(c, err)
	}
	h.metrics.RecordGauge("upload.bytes", float64(len(data)), nil)

	if h.recognizer == nil {
		return SendError(c, errors.OCRUnavailable)
	}

	start := time.Now()
	recognition, err := h.recognizer.Recognize(c.Request().Context(), data, ext)
	h.metrics.RecordProcessingTime("ocr.recognition", time.Since(start))
	if err != nil {
		return h.handleRecognitionError(c, err)
	}

	result := h.detector.ProcessImage(c.Request().Context(), recognition.Text, recognition.Confidence)
	elapsed := time.Since(start)
	h.metrics.RecordProcessingTime("detection.image", elapsed)

	h.logger.Info("image detection processed",
		"status", result.Status,
		"amounts", len(result.Amounts),
		"ocr_confidence", recognition.Confidence,
		"duration_ms", elapsed.Milliseconds(),
	)

	return h.respond(c, result, elapsed)
}

// respond renders the pipeline result; error outcomes surface as 500
func (h *DetectionHandler) respond(c echo.Context, result models.DetectionResult, elapsed time.Duration) error {
	response := dto.NewDetectionResponse(result, time.Now().UTC(), elapsed)
	status := http.StatusOK
	if result.Status == models.StatusError {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, response)
}

// uploadError carries an error code plus a metrics reason for rejected uploads
type uploadError struct {
	code   errors.ErrorCode
	reason string
}

func (e *uploadError) Error() string { return string(e.code) }

// readUpload opens the multipart file, verifies its type by sniffing the
// leading bytes, and returns the content plus a file extension
func (h *DetectionHandler) readUpload(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", &uploadError{code: errors.UploadReadFailed, reason: "open_failed"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, "", &uploadError{code: errors.UploadReadFailed, reason: "read_failed"}
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return nil, "", &uploadError{code: errors.UploadFileTooLarge, reason: "too_large"}
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		// Fall back to the declared type for formats DetectContentType
		// cannot identify from magic bytes
		declared := fileHeader.Header.Get("Content-Type")
		if ext, ok = allowedUploadTypes[declared]; !ok {
			return nil, "", &uploadError{code: errors.UploadUnsupportedType, reason: "unsupported_type"}
		}
	}

	if ext == "" {
		ext = filepath.Ext(fileHeader.Filename)
	}
	return data, ext, nil
}

// handleRecognitionError maps OCR failures to the right error code
func (h *DetectionHandler) handleRecognitionError(c echo.Context, err error) error {
	h.metrics.IncrementCounter("ocr.failed", map[string]string{"reason": "recognition"})
	h.logger.Error("ocr recognition failed", "error", err)

	if c.Request().Context().Err() != nil || isDeadlineExceeded(err) {
		return SendError(c, errors.OCRTimeout)
	}
	return SendError(c, errors.OCRRecognitionError)
}

func isDeadlineExceeded(err error) bool {
	return err != nil && (err == context.DeadlineExceeded ||
		strings.Contains(err.Error(), context.DeadlineExceeded.Error()))
}

// sanitizeText strips markup fragments that have no place in bill text
func sanitizeText(text string) string {
	text = angleBracketPattern.ReplaceAllString(text, "")
	text = scriptURLPattern.ReplaceAllString(text, "")
	text = eventHandlerPattern.ReplaceAllString(text, "")
	return text
}
