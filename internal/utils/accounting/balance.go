package accounting

import (
	"fmt"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the absolute base-currency tolerance for the
// debit/credit balance check. Fixed, not relative to entry magnitude.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// EntryTotals holds the base-currency sums of an entry's lines.
type EntryTotals struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Difference returns TotalDebit - TotalCredit.
func (t EntryTotals) Difference() decimal.Decimal {
	return t.TotalDebit.Sub(t.TotalCredit)
}

// IsBalanced reports whether |debit - credit| is within the tolerance.
func (t EntryTotals) IsBalanced() bool {
	return t.Difference().Abs().LessThanOrEqual(BalanceTolerance)
}

// IsZero reports whether both sides are zero (an empty economic event).
func (t EntryTotals) IsZero() bool {
	return t.TotalDebit.IsZero() && t.TotalCredit.IsZero()
}

// BaseAmounts converts one line's amounts into base currency using its
// exchange rate. A zero rate is treated as 1 (same-currency line).
func BaseAmounts(line domain.JournalEntryLine) (debit, credit decimal.Decimal) {
	rate := line.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	return line.DebitAmount.Mul(rate), line.CreditAmount.Mul(rate)
}

// ComputeTotals sums all line contributions in base currency.
// Per line the contribution is debit*rate on one side and credit*rate on the
// other; the entry is balanced iff the two sides agree within the tolerance.
func ComputeTotals(lines []domain.JournalEntryLine) EntryTotals {
	totals := EntryTotals{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, line := range lines {
		debit, credit := BaseAmounts(line)
		totals.TotalDebit = totals.TotalDebit.Add(debit)
		totals.TotalCredit = totals.TotalCredit.Add(credit)
	}
	return totals
}

// ValidateLineAmounts checks that exactly one of debit/credit is non-zero and
// that the non-zero side is positive.
func ValidateLineAmounts(line domain.JournalEntryLine) error {
	debitSet := !line.DebitAmount.IsZero()
	creditSet := !line.CreditAmount.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("line %d must have exactly one of debit or credit set", line.LineNumber)
	}
	if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
		return fmt.Errorf("line %d amounts must be positive", line.LineNumber)
	}
	return nil
}

// MirrorLine swaps the debit and credit sides of a line (including the base
// currency equivalents) for building reversing entries.
func MirrorLine(line domain.JournalEntryLine) domain.JournalEntryLine {
	mirrored := line
	mirrored.DebitAmount, mirrored.CreditAmount = line.CreditAmount, line.DebitAmount
	mirrored.BaseDebit, mirrored.BaseCredit = line.BaseCredit, line.BaseDebit
	return mirrored
}
