package models

// Semantic amount types assigned by classification
const (
	TypeTotalBill        = "total_bill"
	TypePaid             = "paid"
	TypeDue              = "due"
	TypeInsuranceBalance = "insurance_balance"
	TypePreviousBalance  = "previous_balance"
	TypeDiscount         = "discount"
	TypeTax              = "tax"
	TypeConsultationFee  = "consultation_fee"
	TypeMedicineCost     = "medicine_cost"
	TypeTestCharges      = "test_charges"
	TypeOtherAmount      = "other_amount"
	TypeUnknown          = "unknown"
)

// AllAmountTypes returns every valid amount type label
func AllAmountTypes() []string {
	return []string{
		TypeTotalBill,
		TypePaid,
		TypeDue,
		TypeInsuranceBalance,
		TypePreviousBalance,
		TypeDiscount,
		TypeTax,
		TypeConsultationFee,
		TypeMedicineCost,
		TypeTestCharges,
		TypeOtherAmount,
		TypeUnknown,
	}
}

// IsValidAmountType checks if a type label is valid
func IsValidAmountType(amountType string) bool {
	for _, valid := range AllAmountTypes() {
		if amountType == valid {
			return true
		}
	}
	return false
}

// IsMultiAllowedType reports whether a type may appear more than once in a
// single classification result. Line items like medicines and lab tests
// legitimately repeat on one bill; headline types like total_bill do not.
func IsMultiAllowedType(amountType string) bool {
	switch amountType {
	case TypeMedicineCost, TypeTestCharges, TypeOtherAmount:
		return true
	default:
		return false
	}
}
