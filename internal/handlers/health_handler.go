package handlers

import (
	"net/http"
	"time"

	"amount-detection/internal/dto"
	"amount-detection/internal/ocr"

	"github.com/labstack/echo/v4"
)

const serviceVersion = "1.0.0"

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	recognizer ocr.RecognizerInterface
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(recognizer ocr.RecognizerInterface) *HealthCheckHandler {
	return &HealthCheckHandler{recognizer: recognizer}
}

// HealthCheck adds the health check endpoint
// @Summary Health check
// @Description Check API liveness and OCR availability
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is healthy"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	ocrStatus := "unavailable"
	if h.recognizer != nil && h.recognizer.Available(c.Request().Context()) {
		ocrStatus = "available"
	}

	// The service itself stays healthy without OCR; the text endpoint
	// works regardless
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Service:   "amount-detection",
		Version:   serviceVersion,
		OCR:       ocrStatus,
		Timestamp: time.Now().UTC(),
	})
}
