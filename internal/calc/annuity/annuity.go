// Package annuity implements the amortization primitives every other
// calculator builds on. Payment is the single source of truth for monthly
// payment figures; no other package re-derives the annuity formula.
package annuity

import (
	"math"

	"github.com/shopspring/decimal"
)

// Payment returns the fixed monthly payment for a loan of principal dollars
// amortized over years at annualRatePct (a 0-100 percentage).
//
// A zero rate splits the principal evenly across the term. Invalid inputs
// (non-positive principal or term) return 0 rather than an error so callers
// can surface "N/A" instead of crashing.
func Payment(annualRatePct, years, principal float64) float64 {
	n := years * 12
	if principal <= 0 || n <= 0 {
		return 0
	}
	r := annualRatePct / 100 / 12
	if r == 0 {
		return principal / n
	}
	factor := math.Pow(1+r, n)
	return principal * r * factor / (factor - 1)
}

// PaymentPerPeriod generalizes Payment to an arbitrary payment frequency,
// e.g. 26 for accelerated biweekly.
func PaymentPerPeriod(annualRatePct, years float64, principal float64, paymentsPerYear int) float64 {
	if paymentsPerYear <= 0 {
		return 0
	}
	n := years * float64(paymentsPerYear)
	if principal <= 0 || n <= 0 {
		return 0
	}
	r := annualRatePct / 100 / float64(paymentsPerYear)
	if r == 0 {
		return principal / n
	}
	factor := math.Pow(1+r, n)
	return principal * r * factor / (factor - 1)
}

// MaxPrincipal is the algebraic inverse of Payment: the largest principal a
// given monthly payment can service at annualRatePct over years.
// Payment(rate, years, MaxPrincipal(rate, years, p)) == p within rounding.
func MaxPrincipal(annualRatePct, years, payment float64) float64 {
	n := years * 12
	if payment <= 0 || n <= 0 {
		return 0
	}
	r := annualRatePct / 100 / 12
	if r == 0 {
		return payment * n
	}
	return payment * (1 - math.Pow(1+r, -n)) / r
}

// BiweeklyComparison reports the annual cost difference between monthly and
// accelerated biweekly payments on the same loan.
type BiweeklyComparison struct {
	Monthly             float64 `json:"monthly"`
	AcceleratedBiweekly float64 `json:"accelerated_biweekly"`
	AnnualSavings       float64 `json:"annual_savings"`
}

// BiweeklySavings compares a standard monthly payment against an accelerated
// biweekly payment (26 payments per year) on identical terms.
func BiweeklySavings(annualRatePct, years, principal float64) BiweeklyComparison {
	monthly := Payment(annualRatePct, years, principal)
	biweekly := PaymentPerPeriod(annualRatePct, years, principal, 26)
	return BiweeklyComparison{
		Monthly:             monthly,
		AcceleratedBiweekly: biweekly,
		AnnualSavings:       monthly*12 - biweekly*26,
	}
}

// ScheduleEntry is one period of an amortization schedule. Money fields are
// decimal so chained totals stay cent-exact.
type ScheduleEntry struct {
	Period    int             `json:"period"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Payment   decimal.Decimal `json:"payment"`
	Balance   decimal.Decimal `json:"balance"`
}

// Schedule computes the full period-by-period amortization of a loan. The
// final period absorbs accumulated rounding so the balance lands on exactly
// zero. Returns nil for invalid terms.
func Schedule(annualRatePct, years, principal float64) []ScheduleEntry {
	n := int(years * 12)
	if principal <= 0 || n <= 0 {
		return nil
	}

	payment := decimal.NewFromFloat(Payment(annualRatePct, years, principal)).Round(2)
	monthlyRate := decimal.NewFromFloat(annualRatePct / 100 / 12)
	balance := decimal.NewFromFloat(principal).Round(2)

	entries := make([]ScheduleEntry, 0, n)
	for period := 1; period <= n; period++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		pay := payment

		// Final period: pay off whatever is left.
		if period == n {
			principalPart = balance
			pay = principalPart.Add(interest)
		}

		balance = balance.Sub(principalPart)
		if balance.LessThan(decimal.Zero) {
			balance = decimal.Zero
		}

		entries = append(entries, ScheduleEntry{
			Period:    period,
			Interest:  interest,
			Principal: principalPart,
			Payment:   pay,
			Balance:   balance,
		})
	}
	return entries
}
