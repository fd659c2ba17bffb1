package validation

import (
	"reflect"
	"strings"

	"amount-detection/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("amount_type", validateAmountType)
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("document_text", validateDocumentText)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateAmountType validates that a type label is one of the known semantic
// amount types
func validateAmountType(fl validator.FieldLevel) bool {
	return models.IsValidAmountType(fl.Field().String())
}

// validateCurrencyCode validates that a currency code is one the pipeline can
// report
func validateCurrencyCode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.CurrencyINR, models.CurrencyUSD, models.CurrencyEUR,
		models.CurrencyUnknown, models.CurrencyMixed:
		return true
	default:
		return false
	}
}

// validateDocumentText validates that document text carries something beyond
// whitespace
func validateDocumentText(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
