package services

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"amount-detection/internal/config"
	"amount-detection/internal/models"
)

// invoicePattern catches reference numbers like "Invoice #123" so that small
// identifiers are not classified as monetary amounts
var invoicePattern = regexp.MustCompile(`(?i)invoice\s*#?\s*(\d{1,6})`)

type classifier struct {
	cfg    config.DetectionConfig
	rules  []models.ClassificationRule
	logger *slog.Logger
}

// NewClassifier creates a ClassifierInterface instance with the built-in
// rule table
func NewClassifier(cfg config.DetectionConfig, logger *slog.Logger) ClassifierInterface {
	return &classifier{
		cfg:    cfg,
		rules:  classificationRules(),
		logger: logger,
	}
}

// classificationRules returns the rule table. Rules are evaluated in table
// order; priority only weights match confidence.
func classificationRules() []models.ClassificationRule {
	return []models.ClassificationRule{
		{
			Type:     models.TypeTotalBill,
			Keywords: []string{"total", "grand total", "amount", "sum", "bill amount", "invoice total"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)total[:\s]*(?:amount[:\s]*)?(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:grand|final|net)\s*total[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)bill\s*amount[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 10,
		},
		{
			Type:     models.TypePaid,
			Keywords: []string{"paid", "payment", "received", "cash received", "amount paid"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)paid[:\s]*(?:amount[:\s]*)?(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)payment[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:cash\s*)?received[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)amount\s*paid[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)amt\s*paid[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)paid\s*amount[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)net\s*paid[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)amount\s*(?:recd|received)[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 8,
		},
		{
			Type:     models.TypeDue,
			Keywords: []string{"due", "balance", "pending", "outstanding", "remaining", "patient balance", "amount due"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:amount\s*)?due[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:patient\s*)?balance[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:amount\s*)?pending[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)pay\s*this\s*amount[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 7,
		},
		{
			Type:     models.TypeInsuranceBalance,
			Keywords: []string{"insurance balance", "insurance", "coverage"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)insurance\s*balance[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 8,
		},
		{
			Type:     models.TypePreviousBalance,
			Keywords: []string{"previous balance", "prior balance", "opening balance"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)previous\s*balance[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)prior\s*balance[:\s]*(?:\$|inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 6,
		},
		{
			Type:     models.TypeDiscount,
			Keywords: []string{"discount", "off", "reduction", "deduction", "rebate"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)discount[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)discount[:\s]*([0-9]+(?:\.[0-9]+)?)\s*%`),
				regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*%\s*off`),
				regexp.MustCompile(`(?i)(?:flat\s*)?([0-9,]+(?:\.[0-9]{2})?)\s*(?:inr|rs\.?|₹)?\s*off`),
			},
			Priority: 6,
		},
		{
			Type:     models.TypeTax,
			Keywords: []string{"tax", "gst", "vat", "cgst", "sgst", "igst", "service tax"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:gst|vat|tax)[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:cgst|sgst|igst)[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)service\s*tax[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 5,
		},
		{
			Type:     models.TypeConsultationFee,
			Keywords: []string{"consultation", "doctor fee", "consultation fee", "visit charge"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)consultation[:\s]*(?:fee[:\s]*)?(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)doctor\s*fee[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)visit\s*charge[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 4,
		},
		{
			Type:     models.TypeMedicineCost,
			Keywords: []string{"medicine", "medication", "drugs", "pharmacy", "prescription"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)medicine[:\s]*(?:cost[:\s]*)?(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)medication[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)pharmacy[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 3,
		},
		{
			Type:     models.TypeTestCharges,
			Keywords: []string{"test", "lab", "investigation", "pathology", "scan", "x-ray"},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:lab\s*)?test[:\s]*(?:charges[:\s]*)?(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:pathology|investigation)[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
				regexp.MustCompile(`(?i)(?:scan|x-ray)[:\s]*(?:inr|rs\.?|₹)?\s*([0-9,]+(?:\.[0-9]{2})?)`),
			},
			Priority: 2,
		},
	}
}

// Classify labels each amount using three passes: direct pattern matching,
// contextual keyword matching, then magnitude fallback. The result is the
// deduplicated labeled set with its mean confidence.
func (c *classifier) Classify(text string, amounts []float64) (result models.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classification panicked", "panic", r)
			fallback := make([]models.ClassifiedAmount, 0, len(amounts))
			for _, amount := range amounts {
				fallback = append(fallback, models.ClassifiedAmount{
					Type:       models.TypeUnknown,
					Value:      amount,
					Confidence: 0.1,
				})
			}
			result = models.ClassificationResult{Amounts: fallback, Confidence: 0.1}
		}
	}()

	amounts = c.filterReferenceNumbers(text, amounts)

	var classified []models.ClassifiedAmount
	used := make(map[float64]bool)

	// First pass: direct pattern matching against the rule table
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			for _, match := range pattern.FindAllStringSubmatch(text, -1) {
				matchedValue, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
				if err != nil {
					continue
				}

				closest, ok := c.findClosestAmount(matchedValue, amounts, used)
				if !ok {
					continue
				}

				classified = append(classified, models.ClassifiedAmount{
					Type:       rule.Type,
					Value:      closest,
					Confidence: c.matchConfidence(matchedValue, closest, rule.Priority),
				})
				used[closest] = true
			}
		}
	}

	// Second pass: contextual keyword classification for unmatched amounts
	for _, amount := range amounts {
		if used[amount] {
			continue
		}
		if classification := c.classifyByContext(text, amount); classification != nil {
			classified = append(classified, *classification)
		}
	}

	// Third pass: anything still unlabeled becomes other_amount
	for _, amount := range amounts {
		if !containsValue(classified, amount) {
			classified = append(classified, models.ClassifiedAmount{
				Type:       models.TypeOtherAmount,
				Value:      amount,
				Confidence: 0.3,
			})
		}
	}

	processed := c.postProcess(classified)

	var average float64
	if len(processed) > 0 {
		var sum float64
		for _, a := range processed {
			sum += a.Confidence
		}
		average = round2(sum / float64(len(processed)))
	}

	return models.ClassificationResult{Amounts: processed, Confidence: average}
}

// filterReferenceNumbers removes small invoice/reference numbers from the
// amount list so they are not labeled as money
func (c *classifier) filterReferenceNumbers(text string, amounts []float64) []float64 {
	match := invoicePattern.FindStringSubmatch(text)
	if match == nil {
		return amounts
	}

	invoiceNumber, err := strconv.ParseFloat(match[1], 64)
	if err != nil || invoiceNumber >= 500 {
		return amounts
	}

	filtered := make([]float64, 0, len(amounts))
	for _, amount := range amounts {
		if amount != invoiceNumber {
			filtered = append(filtered, amount)
		}
	}
	return filtered
}

// findClosestAmount picks the unused amount matching the pattern value:
// exact match first, otherwise the nearest within the configured tolerance
func (c *classifier) findClosestAmount(targetValue float64, amounts []float64, used map[float64]bool) (float64, bool) {
	available := make([]float64, 0, len(amounts))
	for _, amount := range amounts {
		if !used[amount] {
			available = append(available, amount)
		}
	}
	if len(available) == 0 {
		return 0, false
	}

	for _, amount := range available {
		if amount == targetValue {
			return targetValue, true
		}
	}

	tolerance := targetValue * c.cfg.MatchTolerance
	var closest float64
	smallestDifference := -1.0
	for _, amount := range available {
		difference := amount - targetValue
		if difference < 0 {
			difference = -difference
		}
		if difference <= tolerance && (smallestDifference < 0 || difference < smallestDifference) {
			closest = amount
			smallestDifference = difference
		}
	}
	if smallestDifference < 0 {
		return 0, false
	}
	return closest, true
}

// classifyByContext inspects the characters around an amount for rule
// keywords, falling back to magnitude when the amount or a keyword cannot
// be located
func (c *classifier) classifyByContext(text string, amount float64) *models.ClassifiedAmount {
	amountStr := formatAmount(amount)

	amountIndex := strings.Index(strings.ToLower(text), amountStr)
	if amountIndex == -1 {
		return c.classifyByMagnitude(amount)
	}

	window := c.cfg.ContextWindow
	start := amountIndex - window
	if start < 0 {
		start = 0
	}
	end := amountIndex + len(amountStr) + window
	if end > len(text) {
		end = len(text)
	}
	context := strings.ToLower(text[start:end])

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(context, strings.ToLower(keyword)) {
				confidence := 0.75 + float64(10-rule.Priority)*0.02
				if confidence > 0.95 {
					confidence = 0.95
				}
				return &models.ClassifiedAmount{
					Type:       rule.Type,
					Value:      amount,
					Confidence: confidence,
				}
			}
		}
	}

	return c.classifyByMagnitude(amount)
}

// classifyByMagnitude assigns a type from typical bill amount ranges
func (c *classifier) classifyByMagnitude(amount float64) *models.ClassifiedAmount {
	switch {
	case amount >= 1000:
		return &models.ClassifiedAmount{Type: models.TypeTotalBill, Value: amount, Confidence: 0.6}
	case amount >= 500:
		return &models.ClassifiedAmount{Type: models.TypeConsultationFee, Value: amount, Confidence: 0.55}
	case amount >= 100:
		return &models.ClassifiedAmount{Type: models.TypeMedicineCost, Value: amount, Confidence: 0.5}
	case amount >= 10:
		return &models.ClassifiedAmount{Type: models.TypeTestCharges, Value: amount, Confidence: 0.45}
	default:
		return &models.ClassifiedAmount{Type: models.TypeOtherAmount, Value: amount, Confidence: 0.3}
	}
}

// matchConfidence scores a pattern match: base 0.7 plus up to 0.2 from rule
// priority, penalized when the matched value deviates from the chosen amount
// beyond the configured tolerance, clamped to [0.1, 0.95]
func (c *classifier) matchConfidence(matchedValue, actualAmount float64, priority int) float64 {
	confidence := 0.7 + (float64(priority)/10)*0.2

	difference := matchedValue - actualAmount
	if difference < 0 {
		difference = -difference
	}
	tolerance := matchedValue * c.cfg.DeviationTolerance
	if difference > tolerance {
		penalty := (difference / matchedValue) * 0.4
		if penalty > 0.25 {
			penalty = 0.25
		}
		confidence -= penalty
	}

	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// postProcess orders classifications by confidence, drops duplicate types
// that cannot repeat, and infers a paid amount from total and due when the
// document never states one
func (c *classifier) postProcess(classifications []models.ClassifiedAmount) []models.ClassifiedAmount {
	sort.SliceStable(classifications, func(i, j int) bool {
		return classifications[i].Confidence > classifications[j].Confidence
	})

	processed := make([]models.ClassifiedAmount, 0, len(classifications))
	typesSeen := make(map[string]bool)
	for _, classification := range classifications {
		if typesSeen[classification.Type] && !models.IsMultiAllowedType(classification.Type) {
			continue
		}
		processed = append(processed, classification)
		typesSeen[classification.Type] = true
	}

	if !typesSeen[models.TypePaid] {
		if inferred := inferPaidAmount(processed); inferred != nil {
			processed = append(processed, *inferred)
		}
	}

	return processed
}

// inferPaidAmount derives paid = total - due when both are present, the
// difference is meaningfully positive, and no existing amount equals it
func inferPaidAmount(processed []models.ClassifiedAmount) *models.ClassifiedAmount {
	var total, due *models.ClassifiedAmount
	for i := range processed {
		switch processed[i].Type {
		case models.TypeTotalBill:
			if total == nil {
				total = &processed[i]
			}
		case models.TypeDue:
			if due == nil {
				due = &processed[i]
			}
		}
	}
	if total == nil || due == nil {
		return nil
	}

	diff := total.Value - due.Value
	if diff <= 0.01 {
		return nil
	}
	inferredValue := round2(diff)

	for _, classification := range processed {
		if classification.Value == inferredValue {
			return nil
		}
	}

	confidence := ((total.Confidence + due.Confidence) / 2) * 0.95
	confidence = round2(confidence)
	if confidence > 0.9 {
		confidence = 0.9
	}

	return &models.ClassifiedAmount{
		Type:       models.TypePaid,
		Value:      inferredValue,
		Confidence: confidence,
		Inferred:   true,
	}
}

// containsValue reports whether any classification carries the given value
func containsValue(classifications []models.ClassifiedAmount, value float64) bool {
	for _, classification := range classifications {
		if classification.Value == value {
			return true
		}
	}
	return false
}

// formatAmount renders a value the way it usually appears in text, without
// a trailing .0 for whole numbers
func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
