package models

// NormalizedAmount is a raw token that survived OCR-error correction and
// parsed to a positive number. Confidence reflects how much correction was
// needed and whether the result looks like a plausible monetary value.
type NormalizedAmount struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Percentage is a percentage token kept apart from monetary amounts
type Percentage struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ClassifiedAmount is a normalized amount labeled with a semantic type.
// Inferred marks amounts derived from other amounts rather than detected
// directly in the text (e.g. paid = total - due).
type ClassifiedAmount struct {
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Inferred   bool    `json:"inferred,omitempty"`
}

// DetectedAmount is the externally visible form of a classified amount,
// carrying the source snippet it was found in.
type DetectedAmount struct {
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Inferred   bool    `json:"inferred,omitempty"`
}
