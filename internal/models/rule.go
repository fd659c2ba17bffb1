package models

import "regexp"

// ClassificationRule labels amounts by semantic role. Patterns each carry a
// single capture group for the numeric value; Keywords back the contextual
// fallback pass. Priority (1-10) weights match confidence; rules are
// evaluated in table order, not priority order.
type ClassificationRule struct {
	Type     string
	Keywords []string
	Patterns []*regexp.Regexp
	Priority int
}
