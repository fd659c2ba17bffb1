package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"amount-detection/internal/config"
	"amount-detection/internal/models"

	"github.com/stretchr/testify/suite"
)

// recordingMetrics captures metric calls for assertions
type recordingMetrics struct {
	mu       sync.Mutex
	counters []string
	gauges   []string
}

func (m *recordingMetrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, name)
}

func (m *recordingMetrics) RecordProcessingTime(name string, duration time.Duration) {}

func (m *recordingMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges = append(m.gauges, name)
}

type DetectionServiceTestSuite struct {
	suite.Suite
	service DetectionServiceInterface
	metrics *recordingMetrics
}

func TestDetectionServiceSuite(t *testing.T) {
	suite.Run(t, new(DetectionServiceTestSuite))
}

func (s *DetectionServiceTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	detectionCfg := config.LoadDetection()

	s.metrics = &recordingMetrics{}
	s.service = NewDetectionService(
		NewTokenExtractor(config.LoadHeuristics(), logger),
		NewNormalizer(logger),
		NewClassifier(detectionCfg, logger),
		detectionCfg,
		s.metrics,
		logger,
	)
}

func (s *DetectionServiceTestSuite) TestProcessText_FullPipeline() {
	text := "Total: Rs 1200\nPaid: Rs 1000\nDue: Rs 200"
	result := s.service.ProcessText(context.Background(), text)

	s.Equal(models.StatusOK, result.Status)
	s.Equal(models.CurrencyINR, result.Currency)
	s.Require().Len(result.Amounts, 3)

	byType := make(map[string]models.DetectedAmount)
	for _, amount := range result.Amounts {
		byType[amount.Type] = amount
	}
	s.Equal(1200.0, byType[models.TypeTotalBill].Value)
	s.Equal(1000.0, byType[models.TypePaid].Value)
	s.Equal(200.0, byType[models.TypeDue].Value)

	s.InDelta(0.77, result.Confidence, 0.0001)
}

func (s *DetectionServiceTestSuite) TestProcessText_ItemizedBill() {
	// An itemized bill with line items, totals and a percentage discount.
	// The stated 800 is rejected as a toll-free-prefixed token and comes
	// back as an inferred paid amount; the 300 line item classifies as a
	// second total from its context window and collapses in dedupe.
	text := "Consultation Fee: INR 500\n" +
		"Lab Tests: INR 300\n" +
		"Medicines: INR 200\n" +
		"Total: INR 1000\n" +
		"Paid: INR 800\n" +
		"Due: INR 200\n" +
		"Discount: 10%"
	result := s.service.ProcessText(context.Background(), text)

	s.Equal(models.StatusOK, result.Status)
	s.Equal(models.CurrencyINR, result.Currency)
	s.Require().Len(result.Amounts, 5)

	total := s.findByType(result.Amounts, models.TypeTotalBill)
	s.Require().NotNil(total)
	s.Equal(1000.0, total.Value)
	s.InDelta(0.9, total.Confidence, 0.0001)

	due := s.findByType(result.Amounts, models.TypeDue)
	s.Require().NotNil(due)
	s.Equal(200.0, due.Value)

	discount := s.findByType(result.Amounts, models.TypeDiscount)
	s.Require().NotNil(discount)
	s.Equal(10.0, discount.Value)

	consultation := s.findByType(result.Amounts, models.TypeConsultationFee)
	s.Require().NotNil(consultation)
	s.Equal(500.0, consultation.Value)

	paid := s.findByType(result.Amounts, models.TypePaid)
	s.Require().NotNil(paid)
	s.Equal(800.0, paid.Value)
	s.True(paid.Inferred)
	s.InDelta(0.83, paid.Confidence, 0.0001)

	s.Require().Len(result.Percentages, 1)
	s.Equal(10.0, result.Percentages[0].Value)

	s.InDelta(0.75, result.Confidence, 0.0001)
}

func (s *DetectionServiceTestSuite) TestProcessText_RepairsOCRMangledText() {
	text := "T0tal: Rs l200\nPald: Rs 1000\n0ue: Rs 200"
	result := s.service.ProcessText(context.Background(), text)

	s.Equal(models.StatusOK, result.Status)
	s.Require().Len(result.Amounts, 3)

	total := s.findByType(result.Amounts, models.TypeTotalBill)
	s.Require().NotNil(total)
	s.Equal(1200.0, total.Value)
}

func (s *DetectionServiceTestSuite) TestProcessText_SourceProvenance() {
	text := "Total: Rs 1200\nPaid: Rs 1000"
	result := s.service.ProcessText(context.Background(), text)

	total := s.findByType(result.Amounts, models.TypeTotalBill)
	s.Require().NotNil(total)
	s.Equal("text: 'Total: Rs 1200'", total.Source)
}

func (s *DetectionServiceTestSuite) TestProcessText_InferredAmountProvenance() {
	// Paid is derived, never quoted from the document
	text := "Total: Rs 1000\nDue: Rs 200"
	result := s.service.ProcessText(context.Background(), text)

	paid := s.findByType(result.Amounts, models.TypePaid)
	s.Require().NotNil(paid)
	s.True(paid.Inferred)
	s.Equal("text: 'amount 800 detected'", paid.Source)
}

func (s *DetectionServiceTestSuite) TestProcessText_MixedCurrencies() {
	result := s.service.ProcessText(context.Background(), "Total $100 and Rs 500")

	s.Equal(models.StatusOK, result.Status)
	s.Equal(models.CurrencyMixed, result.Currency)
}

func (s *DetectionServiceTestSuite) TestProcessText_Percentages() {
	result := s.service.ProcessText(context.Background(), "Total: Rs 1200 with 10% discount")

	s.Equal(models.StatusOK, result.Status)
	s.Require().Len(result.Percentages, 1)
	s.Equal(10.0, result.Percentages[0].Value)
}

func (s *DetectionServiceTestSuite) TestProcessText_NoNumericTokens() {
	result := s.service.ProcessText(context.Background(), "thank you for your visit")

	s.Equal(models.StatusNoAmountsFound, result.Status)
	s.Equal(models.ReasonNoNumericTokens, result.Reason)
}

func (s *DetectionServiceTestSuite) TestProcessText_NoisyDocument() {
	result := s.service.ProcessText(context.Background(), "Call 8001234567 for support")

	s.Equal(models.StatusNoAmountsFound, result.Status)
	s.Equal(models.ReasonDocumentTooNoisy, result.Reason)
}

func (s *DetectionServiceTestSuite) TestProcessText_CancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := s.service.ProcessText(ctx, "Total: Rs 1200")

	s.Equal(models.StatusError, result.Status)
	s.Equal("Failed to process text", result.Message)
}

func (s *DetectionServiceTestSuite) TestProcessText_RecordsMetrics() {
	s.service.ProcessText(context.Background(), "Total: Rs 1200")

	s.Contains(s.metrics.counters, "detection.processed")
	s.Contains(s.metrics.gauges, "detection.amounts")
}

func (s *DetectionServiceTestSuite) TestProcessImage_BlendsOCRConfidence() {
	result := s.service.ProcessImage(context.Background(), "Total: Rs 1200", 85)

	s.Equal(models.StatusOK, result.Status)
	s.Require().Len(result.Amounts, 1)
	s.Equal(models.TypeTotalBill, result.Amounts[0].Type)
	s.InDelta(0.92, result.Confidence, 0.0001)
}

func (s *DetectionServiceTestSuite) TestProcessImage_FractionalConfidenceAccepted() {
	result := s.service.ProcessImage(context.Background(), "Total: Rs 1200", 0.85)

	s.Equal(models.StatusOK, result.Status)
	s.InDelta(0.92, result.Confidence, 0.0001)
}

func (s *DetectionServiceTestSuite) TestProcessImage_EmptyText() {
	result := s.service.ProcessImage(context.Background(), "   ", 0.9)

	s.Equal(models.StatusNoAmountsFound, result.Status)
	s.Equal(models.ReasonNoTextInImage, result.Reason)
}

func (s *DetectionServiceTestSuite) TestProcessImage_NoAmountsReason() {
	result := s.service.ProcessImage(context.Background(), "thank you for your visit", 0.9)

	s.Equal(models.StatusNoAmountsFound, result.Status)
	s.Equal(models.ReasonNoAmountsInOCRText, result.Reason)
}

func (s *DetectionServiceTestSuite) findByType(amounts []models.DetectedAmount, amountType string) *models.DetectedAmount {
	for i := range amounts {
		if amounts[i].Type == amountType {
			return &amounts[i]
		}
	}
	return nil
}
