package services

import (
	"context"
	"time"

	"amount-detection/internal/models"
)

// TokenExtractorInterface defines the contract for pulling numeric-looking
// tokens out of raw document text
type TokenExtractorInterface interface {
	// Extract finds raw numeric tokens and a currency hint in the text
	Extract(text string) models.ExtractionResult
}

// NormalizerInterface defines the contract for OCR-error correction
type NormalizerInterface interface {
	// Normalize corrects OCR digit confusions in raw tokens and parses them
	// into numeric amounts, separating percentage tokens
	Normalize(rawTokens []string, currencyHint string) models.NormalizationResult

	// CleanText applies text-level OCR corrections so that downstream
	// context matching sees repaired keywords and digits
	CleanText(text string) string

	// IsReasonableAmount reports whether an amount is plausible given its
	// surrounding context
	IsReasonableAmount(amount float64, context string) bool
}

// ClassifierInterface defines the contract for labeling amounts with
// semantic types
type ClassifierInterface interface {
	// Classify labels each amount using pattern matching, contextual
	// keywords and magnitude fallbacks
	Classify(text string, amounts []float64) models.ClassificationResult
}

// DetectionServiceInterface orchestrates the extraction, normalization and
// classification stages into a single detection pipeline
type DetectionServiceInterface interface {
	// ProcessText runs the full pipeline on plain text input
	ProcessText(ctx context.Context, text string) models.DetectionResult

	// ProcessImage runs the pipeline on text recognized from an image,
	// blending the recognizer's own confidence into the final score
	ProcessImage(ctx context.Context, extractedText string, ocrConfidence float64) models.DetectionResult
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}
