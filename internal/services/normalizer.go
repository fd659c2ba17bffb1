package services

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"amount-detection/internal/models"

	"github.com/shopspring/decimal"
)

// digitReplacer fixes the usual OCR letter-for-digit confusions inside
// numeric tokens
var digitReplacer = strings.NewReplacer(
	"l", "1",
	"I", "1",
	"O", "0",
	"o", "0",
	"S", "5",
	"s", "5",
	"Z", "2",
	"z", "2",
	"G", "6",
	"g", "9",
	"B", "8",
	"T", "7",
)

type textRepair struct {
	pattern     *regexp.Regexp
	replacement string
}

// textRepairs are conservative text-level fixups applied before extraction
// and classification, so context keywords and digit runs are restored for
// downstream matching
var textRepairs = []textRepair{
	{regexp.MustCompile(`(?i)T0tal`), "Total"},
	{regexp.MustCompile(`(?i)Pald`), "Paid"},
	{regexp.MustCompile(`(?i)0ue`), "Due"},
	{regexp.MustCompile(`(?i)(Rs)\s*l`), "${1} 1"},
	// Letter-for-digit confusions adjacent to real digits
	{regexp.MustCompile(`\bl([0-9]+)`), "1${1}"},
	{regexp.MustCompile(`([0-9])O([0-9])`), "${1}0${2}"},
	{regexp.MustCompile(`I([0-9])`), "1${1}"},
	{regexp.MustCompile(`([0-9])[oO]([0-9]{2})`), "${1}.0${2}"},
}

// tokenRepairs are aggressive digit fixups safe only inside a token that is
// already known to be numeric
var tokenRepairs = []textRepair{
	{regexp.MustCompile(`\bl([0-9]+)`), "1${1}"},
	{regexp.MustCompile(`([0-9])O([0-9])`), "${1}0${2}"},
	{regexp.MustCompile(`I([0-9])`), "1${1}"},
	{regexp.MustCompile(`1O`), "10"},
	{regexp.MustCompile(`O1`), "01"},
	{regexp.MustCompile(`([0-9])[oO]([0-9]{2})`), "${1}.0${2}"},
}

var cleanShapePattern = regexp.MustCompile(`^\d+(\.\d{2})?$`)

type normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a NormalizerInterface instance
func NewNormalizer(logger *slog.Logger) NormalizerInterface {
	return &normalizer{logger: logger}
}

// normalizedToken is the outcome of normalizing one raw token
type normalizedToken struct {
	value        float64
	confidence   float64
	isPercentage bool
}

// Normalize corrects OCR errors in each token and parses it to a number.
// Percentage tokens are filed separately and do not influence the mean
// confidence. The currency hint is accepted for interface stability but the
// correction rules are currency independent.
func (n *normalizer) Normalize(rawTokens []string, currencyHint string) models.NormalizationResult {
	_ = currencyHint

	amounts := make([]models.NormalizedAmount, 0, len(rawTokens))
	var percentages []models.Percentage
	var totalConfidence float64
	validTokens := 0

	for _, token := range rawTokens {
		normalized := n.normalizeToken(token)
		if normalized == nil {
			n.logger.Debug("token rejected during normalization", "token", token)
			continue
		}

		if normalized.isPercentage {
			percentages = append(percentages, models.Percentage{
				Value:      normalized.value,
				Confidence: normalized.confidence,
			})
			continue
		}

		amounts = append(amounts, models.NormalizedAmount{
			Value:      normalized.value,
			Confidence: normalized.confidence,
		})
		totalConfidence += normalized.confidence
		validTokens++
	}

	var average float64
	if validTokens > 0 {
		average = round2(totalConfidence / float64(validTokens))
	}

	return models.NormalizationResult{
		Amounts:     amounts,
		Percentages: percentages,
		Confidence:  average,
	}
}

// normalizeToken corrects and parses a single raw token, or returns nil when
// the token cannot become a positive number
func (n *normalizer) normalizeToken(token string) *normalizedToken {
	if strings.Contains(token, "%") {
		value, err := parseTokenValue(token)
		if err != nil {
			return nil
		}
		return &normalizedToken{value: value, confidence: 0.9, isPercentage: true}
	}

	corrected := applyDigitCorrections(token)
	corrected = strings.NewReplacer(",", "", " ", "", "\t", "").Replace(corrected)

	value, err := strconv.ParseFloat(corrected, 64)
	if err != nil || value <= 0 {
		return nil
	}

	return &normalizedToken{
		value:      value,
		confidence: normalizationConfidence(token, corrected, value),
	}
}

// applyDigitCorrections fixes character-level and pattern-level OCR mistakes
// inside a numeric token
func applyDigitCorrections(token string) string {
	corrected := digitReplacer.Replace(token)
	for _, repair := range tokenRepairs {
		corrected = repair.pattern.ReplaceAllString(corrected, repair.replacement)
	}
	return corrected
}

// normalizationConfidence starts at 1.0, subtracts 0.1 per correction, adds
// 0.1 for a clean number shape and 0.1 for a plausible magnitude, subtracts
// 0.2 for implausibly large values, clamped to [0.1, 1.0]
func normalizationConfidence(original, corrected string, value float64) float64 {
	confidence := 1.0
	confidence -= float64(countCorrections(original, corrected)) * 0.1

	if cleanShapePattern.MatchString(corrected) {
		confidence += 0.1
	}
	if value >= 1 && value <= 1000000 {
		confidence += 0.1
	}
	if value > 1000000 {
		confidence -= 0.2
	}

	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// countCorrections counts positions where the corrected token differs from
// the original, plus any length change
func countCorrections(original, corrected string) int {
	corrections := 0
	minLength := len(original)
	if len(corrected) < minLength {
		minLength = len(corrected)
	}

	for i := 0; i < minLength; i++ {
		if original[i] != corrected[i] {
			corrections++
		}
	}

	diff := len(original) - len(corrected)
	if diff < 0 {
		diff = -diff
	}
	return corrections + diff
}

// CleanText repairs OCR-mangled keywords and digit runs at the text level so
// extraction and classification see restored context
func (n *normalizer) CleanText(text string) string {
	cleaned := text
	for _, repair := range textRepairs {
		cleaned = repair.pattern.ReplaceAllString(cleaned, repair.replacement)
	}
	return cleaned
}

// IsReasonableAmount applies range and context sanity checks to a value
func (n *normalizer) IsReasonableAmount(amount float64, context string) bool {
	if amount <= 0 || amount > 10000000 {
		return false
	}

	contextLower := strings.ToLower(context)
	if strings.Contains(contextLower, "discount") && amount > 50 {
		return false
	}
	if strings.Contains(contextLower, "tax") && amount > 30 {
		return false
	}

	return true
}

// round2 rounds to two decimal places
func round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
