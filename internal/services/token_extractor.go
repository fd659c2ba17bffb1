package services

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"amount-detection/internal/config"
	"amount-detection/internal/models"
)

// Amount token patterns, in priority order: currency-prefixed, then
// currency-suffixed, then bare numbers.
var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:INR|Rs\.?|₹)\s*([0-9,]+(?:\.[0-9]{2})?)`),
		regexp.MustCompile(`(?i)([0-9,]+(?:\.[0-9]{2})?)\s*(?:INR|Rs\.?|₹)`),
		regexp.MustCompile(`\b([0-9,]+(?:\.[0-9]{2})?)\b`),
	}

	percentagePattern = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%`)
	currencyPattern   = regexp.MustCompile(`(?i)INR|Rs\.?|₹|\$|USD|EUR|€`)
	contextKeywords   = regexp.MustCompile(`(?i)total|paid|due|amount|bill|discount|tax`)
)

type tokenExtractor struct {
	heuristics       config.HeuristicsConfig
	tollFreePrefixes *regexp.Regexp
	billingKeywords  *regexp.Regexp
	logger           *slog.Logger
}

// NewTokenExtractor creates a TokenExtractorInterface instance using the
// given noise-filter heuristics
func NewTokenExtractor(heuristics config.HeuristicsConfig, logger *slog.Logger) TokenExtractorInterface {
	return &tokenExtractor{
		heuristics:       heuristics,
		tollFreePrefixes: compileAlternation("^(?:%s)", heuristics.TollFreePrefixes),
		billingKeywords:  compileAlternation("(?i)%s", heuristics.BillingKeywords),
		logger:           logger,
	}
}

// compileAlternation builds a regexp from a list of literal alternatives
func compileAlternation(format string, alternatives []string) *regexp.Regexp {
	quoted := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		quoted = append(quoted, regexp.QuoteMeta(alt))
	}
	pattern := strings.Join(quoted, "|")
	return regexp.MustCompile(strings.Replace(format, "%s", pattern, 1))
}

// Extract finds raw numeric tokens and a currency hint in the text.
// Token order is first-seen across the patterns; duplicates by literal
// spelling are dropped. Percentage tokens keep their % suffix.
func (e *tokenExtractor) Extract(text string) (result models.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("token extraction panicked", "panic", r)
			result = models.ExtractionResult{
				Status: models.StatusNoAmountsFound,
				Reason: models.ReasonTextProcessing,
			}
		}
	}()

	currencyHint := e.detectCurrencyHint(text)

	var rawTokens []string
	seen := make(map[string]bool)
	for _, pattern := range amountPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			token := match[1]
			if token != "" && !seen[token] {
				rawTokens = append(rawTokens, token)
				seen[token] = true
			}
		}
	}

	// Percentages ride along as raw tokens; the normalizer files them apart
	for _, match := range percentagePattern.FindAllString(text, -1) {
		rawTokens = append(rawTokens, match)
	}

	if len(rawTokens) == 0 {
		return models.ExtractionResult{
			Status: models.StatusNoAmountsFound,
			Reason: models.ReasonNoNumericTokens,
		}
	}

	filtered := e.filterNoise(rawTokens, text, currencyHint)
	if len(filtered) == 0 {
		e.logger.Debug("all extracted tokens rejected as noise", "token_count", len(rawTokens))
		return models.ExtractionResult{
			Status: models.StatusNoAmountsFound,
			Reason: models.ReasonDocumentTooNoisy,
		}
	}

	return models.ExtractionResult{
		Status:       models.StatusOK,
		RawTokens:    filtered,
		CurrencyHint: currencyHint,
		Confidence:   e.calculateConfidence(filtered, text),
	}
}

// detectCurrencyHint scans for currency indicators and reduces them to a
// single code, or MIXED when more than one distinct currency appears
func (e *tokenExtractor) detectCurrencyHint(text string) string {
	matches := currencyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return models.CurrencyUnknown
	}

	codes := make(map[string]bool)
	for _, match := range matches {
		codes[models.NormalizeCurrencySymbol(match)] = true
	}

	if len(codes) > 1 {
		return models.CurrencyMixed
	}
	for code := range codes {
		return code
	}
	return models.CurrencyUnknown
}

// filterNoise drops tokens that are probably not monetary amounts
func (e *tokenExtractor) filterNoise(rawTokens []string, text, currencyHint string) []string {
	hasBillingContext := e.billingKeywords.MatchString(text)

	filtered := make([]string, 0, len(rawTokens))
	for _, token := range rawTokens {
		value, err := parseTokenValue(token)
		if err != nil || value <= 0 {
			continue
		}
		// Phone-like tokens with common toll-free prefixes
		if e.tollFreePrefixes.MatchString(token) {
			continue
		}
		// Long undecorated integers with no currency in sight are likely
		// account or invoice identifiers
		if value > e.heuristics.IDValueThreshold && !strings.Contains(token, ".") &&
			currencyHint == models.CurrencyUnknown {
			continue
		}
		// Tiny values are noise unless the document talks about billing
		if value < e.heuristics.SmallValueFloor && !hasBillingContext {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}

// calculateConfidence scores the extraction: base 0.5, plus up to 0.3 for
// token count, 0.2 for currency indicators, 0.1 for billing keywords
func (e *tokenExtractor) calculateConfidence(tokens []string, text string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	score := 0.5
	tokenBonus := float64(len(tokens)) * 0.1
	if tokenBonus > 0.3 {
		tokenBonus = 0.3
	}
	score += tokenBonus

	if currencyPattern.MatchString(text) {
		score += 0.2
	}
	if contextKeywords.MatchString(text) {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// parseTokenValue parses a raw token's numeric value, ignoring thousands
// separators and percent signs
func parseTokenValue(token string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "%", "").Replace(token)
	cleaned = strings.TrimSpace(cleaned)
	return strconv.ParseFloat(cleaned, 64)
}
