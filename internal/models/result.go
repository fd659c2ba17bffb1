package models

// Detection result statuses
const (
	StatusOK             = "ok"
	StatusNoAmountsFound = "no_amounts_found"
	StatusError          = "error"
)

// Reasons reported with a no_amounts_found status
const (
	ReasonNoNumericTokens    = "no numeric tokens detected"
	ReasonDocumentTooNoisy   = "document too noisy"
	ReasonTextProcessing     = "text processing error"
	ReasonNoTextInImage      = "no text detected in image"
	ReasonNoAmountsInOCRText = "no amounts found in OCR text"
	ReasonImageProcessing    = "image processing error"
)

// ExtractionResult is the output of token extraction: the raw numeric-looking
// tokens in first-seen order plus a currency hint, or a no_amounts_found
// status with a reason.
type ExtractionResult struct {
	Status       string   `json:"status"`
	Reason       string   `json:"reason,omitempty"`
	RawTokens    []string `json:"raw_tokens,omitempty"`
	CurrencyHint string   `json:"currency_hint,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
}

// Found reports whether extraction produced any tokens
func (r ExtractionResult) Found() bool {
	return r.Status == StatusOK
}

// NormalizationResult carries the corrected amounts, the percentage tokens
// filed separately, and the mean per-token normalization confidence
// (0 when no token was valid).
type NormalizationResult struct {
	Amounts     []NormalizedAmount `json:"normalized_amounts"`
	Percentages []Percentage       `json:"percentages,omitempty"`
	Confidence  float64            `json:"normalization_confidence"`
}

// Values returns just the numeric values of the normalized amounts
func (r NormalizationResult) Values() []float64 {
	values := make([]float64, 0, len(r.Amounts))
	for _, a := range r.Amounts {
		values = append(values, a.Value)
	}
	return values
}

// ClassificationResult is the output of the classification passes: labeled
// amounts and their mean confidence.
type ClassificationResult struct {
	Amounts    []ClassifiedAmount `json:"amounts"`
	Confidence float64            `json:"confidence"`
}

// DetectionResult is the final pipeline output. Currency, Amounts and
// Confidence are populated when Status is ok; Reason when no_amounts_found;
// Message and Details when error.
type DetectionResult struct {
	Status      string           `json:"status"`
	Currency    string           `json:"currency,omitempty"`
	Amounts     []DetectedAmount `json:"amounts,omitempty"`
	Confidence  float64          `json:"confidence,omitempty"`
	Percentages []Percentage     `json:"percentages,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	Message     string           `json:"message,omitempty"`
	Details     string           `json:"details,omitempty"`
}

// NoAmountsFound builds a no_amounts_found result with the given reason
func NoAmountsFound(reason string) DetectionResult {
	return DetectionResult{
		Status: StatusNoAmountsFound,
		Reason: reason,
	}
}

// ErrorResult builds an error result with a human-readable message and
// optional detail text (typically the underlying error)
func ErrorResult(message, details string) DetectionResult {
	return DetectionResult{
		Status:  StatusError,
		Message: message,
		Details: details,
	}
}
