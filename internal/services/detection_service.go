package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"amount-detection/internal/config"
	"amount-detection/internal/models"
)

// Final confidence blend weights across the pipeline stages
const (
	classificationWeight = 0.6
	normalizationWeight  = 0.25
	ocrWeight            = 0.15
)

type detectionService struct {
	extractor  TokenExtractorInterface
	normalizer NormalizerInterface
	classifier ClassifierInterface
	cfg        config.DetectionConfig
	metrics    MetricsRecorderInterface
	logger     *slog.Logger
}

// NewDetectionService wires the pipeline stages into a
// DetectionServiceInterface instance
func NewDetectionService(
	extractor TokenExtractorInterface,
	normalizer NormalizerInterface,
	classifier ClassifierInterface,
	cfg config.DetectionConfig,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) DetectionServiceInterface {
	return &detectionService{
		extractor:  extractor,
		normalizer: normalizer,
		classifier: classifier,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessText runs the full detection pipeline on plain text
func (s *detectionService) ProcessText(ctx context.Context, text string) models.DetectionResult {
	result := s.run(ctx, text, 0)
	s.recordOutcome("text", result)
	return result
}

// ProcessImage runs the pipeline on text recognized from an image. The
// recognizer's confidence joins the final blend; values on a 0-100 scale
// are normalized to [0, 1] first.
func (s *detectionService) ProcessImage(ctx context.Context, extractedText string, ocrConfidence float64) models.DetectionResult {
	if strings.TrimSpace(extractedText) == "" {
		result := models.NoAmountsFound(models.ReasonNoTextInImage)
		s.recordOutcome("image", result)
		return result
	}

	if ocrConfidence > 1 {
		ocrConfidence = ocrConfidence / 100
	}

	result := s.run(ctx, extractedText, ocrConfidence)
	if result.Status == models.StatusNoAmountsFound {
		// Distinguish OCR-sourced noise from plain-text noise
		result.Reason = models.ReasonNoAmountsInOCRText
	}
	s.recordOutcome("image", result)
	return result
}

// run executes the extraction, normalization and classification stages and
// assembles the final result
func (s *detectionService) run(ctx context.Context, text string, ocrConfidence float64) models.DetectionResult {
	if err := ctx.Err(); err != nil {
		return models.ErrorResult("Failed to process text", err.Error())
	}

	cleaned := s.normalizer.CleanText(text)

	extraction := s.extractor.Extract(cleaned)
	if !extraction.Found() {
		s.logger.Info("no amounts extracted", "reason", extraction.Reason)
		return models.NoAmountsFound(extraction.Reason)
	}

	normalization := s.normalizer.Normalize(extraction.RawTokens, extraction.CurrencyHint)
	classification := s.classifier.Classify(cleaned, normalization.Values())

	return s.assemble(cleaned, extraction, normalization, classification, ocrConfidence)
}

// assemble attaches provenance to each classified amount and blends the
// stage confidences into the final score
func (s *detectionService) assemble(
	text string,
	extraction models.ExtractionResult,
	normalization models.NormalizationResult,
	classification models.ClassificationResult,
	ocrConfidence float64,
) models.DetectionResult {
	currency := extraction.CurrencyHint
	if currency == "" {
		currency = models.CurrencyUnknown
	}

	amounts := make([]models.DetectedAmount, 0, len(classification.Amounts))
	var classificationSum float64
	for _, amount := range classification.Amounts {
		amounts = append(amounts, models.DetectedAmount{
			Type:       amount.Type,
			Value:      amount.Value,
			Confidence: amount.Confidence,
			Source:     s.findSourceInText(text, amount.Value),
			Inferred:   amount.Inferred,
		})
		classificationSum += amount.Confidence
	}

	var classificationAvg float64
	if len(amounts) > 0 {
		classificationAvg = classificationSum / float64(len(amounts))
	}

	blended := classificationAvg*classificationWeight +
		normalization.Confidence*normalizationWeight +
		ocrConfidence*ocrWeight

	return models.DetectionResult{
		Status:      models.StatusOK,
		Currency:    currency,
		Amounts:     amounts,
		Confidence:  round2(blended),
		Percentages: normalization.Percentages,
	}
}

// findSourceInText locates the snippet an amount came from: the first whole
// line containing it, else a window around its first standalone occurrence,
// else a placeholder
func (s *detectionService) findSourceInText(text string, value float64) string {
	valueStr := formatAmount(value)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(line, valueStr) {
			return "text: '" + strings.TrimSpace(line) + "'"
		}
	}

	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(valueStr) + `\b`)
	if err == nil {
		if loc := pattern.FindStringIndex(text); loc != nil {
			window := s.cfg.ProvenanceWindow
			start := loc[0] - window
			if start < 0 {
				start = 0
			}
			end := loc[1] + window
			if end > len(text) {
				end = len(text)
			}
			return "text: '" + strings.TrimSpace(text[start:end]) + "'"
		}
	}

	return "text: 'amount " + valueStr + " detected'"
}

// recordOutcome emits detection metrics when a recorder is configured
func (s *detectionService) recordOutcome(input string, result models.DetectionResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter("detection.processed", map[string]string{
		"input":  input,
		"status": result.Status,
	})
	if result.Status == models.StatusOK {
		s.metrics.RecordGauge("detection.amounts", float64(len(result.Amounts)), nil)
	}
}
