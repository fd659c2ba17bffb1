package dto

import (
	"fmt"
	"time"

	"amount-detection/internal/models"
)

// Detection Request DTOs

// DetectTextRequest contains the raw document text to analyze
type DetectTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// Detection Response DTOs

// DetectionResponse is the envelope for a processed document. Currency,
// Amounts and Confidence are present when Status is ok; Reason when
// no_amounts_found; Message and Details when error.
type DetectionResponse struct {
	Status         string                  `json:"status"`
	Currency       string                  `json:"currency,omitempty"`
	Amounts        []models.DetectedAmount `json:"amounts,omitempty"`
	Confidence     float64                 `json:"confidence,omitempty"`
	Percentages    []models.Percentage     `json:"percentages,omitempty"`
	Reason         string                  `json:"reason,omitempty"`
	Message        string                  `json:"message,omitempty"`
	Details        string                  `json:"details,omitempty"`
	ProcessedAt    time.Time               `json:"processedAt"`
	ProcessingTime string                  `json:"processingTime"`
}

// NewDetectionResponse wraps a pipeline result with processing metadata
func NewDetectionResponse(result models.DetectionResult, processedAt time.Time, elapsed time.Duration) DetectionResponse {
	return DetectionResponse{
		Status:         result.Status,
		Currency:       result.Currency,
		Amounts:        result.Amounts,
		Confidence:     result.Confidence,
		Percentages:    result.Percentages,
		Reason:         result.Reason,
		Message:        result.Message,
		Details:        result.Details,
		ProcessedAt:    processedAt,
		ProcessingTime: fmt.Sprintf("%dms", elapsed.Milliseconds()),
	}
}

// APIInfoResponse describes the service and its endpoints
type APIInfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// HealthResponse reports service liveness and OCR availability
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	OCR       string    `json:"ocr"`
	Timestamp time.Time `json:"timestamp"`
}
