package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations attaches struct-level checks to gin's binding
// validator. Called once during route registration.
func RegisterCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterStructValidation(validateEntryLineRequest, EntryLineRequest{})
	}
}

// validateEntryLineRequest rejects negative amounts at bind time. Sign is
// carried by the debit/credit split, never by the amount itself; which side a
// line uses is judged later by the rule pipeline so the validate endpoint can
// still report a verdict.
func validateEntryLineRequest(sl validator.StructLevel) {
	line := sl.Current().Interface().(EntryLineRequest)
	if line.DebitAmount.IsNegative() {
		sl.ReportError(line.DebitAmount, "DebitAmount", "debitAmount", "nonnegative", "")
	}
	if line.CreditAmount.IsNegative() {
		sl.ReportError(line.CreditAmount, "CreditAmount", "creditAmount", "nonnegative", "")
	}
	if line.ExchangeRate.IsNegative() {
		sl.ReportError(line.ExchangeRate, "ExchangeRate", "exchangeRate", "nonnegative", "")
	}
}
