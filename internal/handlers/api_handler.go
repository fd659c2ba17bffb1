package handlers

import (
	"net/http"

	"amount-detection/internal/dto"

	"github.com/labstack/echo/v4"
)

// APIInfoHandler serves the API description endpoint
type APIInfoHandler struct{}

// NewAPIInfoHandler creates a new API info handler
func NewAPIInfoHandler() *APIInfoHandler {
	return &APIInfoHandler{}
}

// APIInfo describes the service and its endpoints
// @Summary API information
// @Description Describe the service and list its endpoints
// @Tags Info
// @Produce json
// @Success 200 {object} dto.APIInfoResponse "Service description"
// @Router / [get]
func (h *APIInfoHandler) APIInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.APIInfoResponse{
		Name:        "Amount Detection API",
		Version:     serviceVersion,
		Description: "Detects, normalizes and classifies monetary amounts in bill and receipt text or images",
		Endpoints: map[string]string{
			"GET /api":                       "API information",
			"GET /api/health":                "Health check",
			"POST /api/detect-amounts-text":  "Detect amounts in plain text",
			"POST /api/detect-amounts-image": "Detect amounts in an uploaded image",
		},
	})
}
