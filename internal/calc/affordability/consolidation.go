package affordability

import "github.com/kraftmortgages/calcserv/internal/calc/annuity"

// Thresholds for flagging a strong consolidation candidate.
const (
	consolidationMinEquity  = 50000.0
	consolidationMinSavings = 500.0
	consolidationMaxDTIPct  = 40.0
)

// ConsolidationInput describes a homeowner weighing rolling unsecured debt
// into their mortgage. TotalDebts and MonthlyDebtPayments cover the debts
// being considered for consolidation.
type ConsolidationInput struct {
	HomeValue           float64 `json:"home_value"`
	CurrentMortgage     float64 `json:"current_mortgage"`
	CreditScore         int     `json:"credit_score"`
	TotalDebts          float64 `json:"total_debts"`
	MonthlyDebtPayments float64 `json:"monthly_debt_payments"`
	GrossAnnualIncome   float64 `json:"gross_annual_income"`
}

// ConsolidationResult compares the position before and after consolidating.
type ConsolidationResult struct {
	AvailableEquity     float64 `json:"available_equity"`
	NewMortgageAmount   float64 `json:"new_mortgage_amount"`
	NewMortgagePayment  float64 `json:"new_mortgage_payment"`
	MonthlySavings      float64 `json:"monthly_savings"`
	AnnualSavings       float64 `json:"annual_savings"`
	NewDTIPct           float64 `json:"new_dti_pct"`
	OriginalDTIPct      float64 `json:"original_dti_pct"`
	RefinanceRatePct    float64 `json:"refinance_rate_pct"`
	IsGoodCandidate     bool    `json:"is_good_candidate"`
	RemainingDebtsMonth float64 `json:"remaining_debt_payments_monthly"`
}

// refinanceLTVForScore is the maximum refinance loan-to-value by credit tier.
func refinanceLTVForScore(score int) float64 {
	switch {
	case score >= 720:
		return 0.80
	case score >= 680:
		return 0.75
	default:
		return 0.70
	}
}

// EquityLendingRate maps a credit score to the equity-lending rate tier.
// Equity refinances price off their own table, not the purchase contract
// table in RateForCreditScore.
func EquityLendingRate(score int) float64 {
	switch {
	case score >= 750:
		return 4.99
	case score >= 700:
		return 5.25
	case score >= 650:
		return 6.25
	default:
		return 7.50
	}
}

// DebtConsolidation estimates how much high-interest debt can be folded into
// the mortgage and what it does to monthly cash flow and debt-to-income.
// Both payment figures come from the shared annuity primitive, amortized over
// the standard 25-year term at the equity-lending rate for the score.
func DebtConsolidation(in ConsolidationInput) ConsolidationResult {
	maxLTV := refinanceLTVForScore(in.CreditScore)
	rate := EquityLendingRate(in.CreditScore)

	maxLoan := in.HomeValue * maxLTV
	available := maxLoan - in.CurrentMortgage
	if available < 0 {
		available = 0
	}
	// Cannot consolidate more than is owed.
	if available > in.TotalDebts {
		available = in.TotalDebts
	}

	newMortgage := in.CurrentMortgage + available
	newPayment := annuity.Payment(rate, qualifyingAmortYears, newMortgage)
	originalPayment := annuity.Payment(rate, qualifyingAmortYears, in.CurrentMortgage)

	var remainingDebtPayments float64
	if in.TotalDebts > 0 {
		consolidatedShare := available / in.TotalDebts
		remainingDebtPayments = in.MonthlyDebtPayments * (1 - consolidatedShare)
	}

	totalOriginal := originalPayment + in.MonthlyDebtPayments
	monthlySavings := totalOriginal - newPayment

	var newDTI, originalDTI float64
	if in.GrossAnnualIncome > 0 {
		monthlyIncome := in.GrossAnnualIncome / 12
		newDTI = newPayment / monthlyIncome * 100
		originalDTI = totalOriginal / monthlyIncome * 100
	}

	return ConsolidationResult{
		AvailableEquity:     available,
		NewMortgageAmount:   newMortgage,
		NewMortgagePayment:  newPayment,
		MonthlySavings:      monthlySavings,
		AnnualSavings:       monthlySavings * 12,
		NewDTIPct:           newDTI,
		OriginalDTIPct:      originalDTI,
		RefinanceRatePct:    rate,
		RemainingDebtsMonth: remainingDebtPayments,
		IsGoodCandidate: available > consolidationMinEquity &&
			monthlySavings > consolidationMinSavings &&
			newDTI < consolidationMaxDTIPct,
	}
}

// NormalizedIncome computes the qualifying income for a self-employed
// applicant from their last notices of assessment: the lesser of the two-year
// average and the lower single year, each grossed up by eligible add-backs.
// The three-year trend is informational only.
func NormalizedIncome(noa1, noa2, noa3, addbacks float64) (qualifying, threeYearAvg float64) {
	avg2 := (noa1+noa2)/2 + addbacks
	lower := noa1 + addbacks
	if noa2+addbacks < lower {
		lower = noa2 + addbacks
	}
	qualifying = avg2
	if lower < qualifying {
		qualifying = lower
	}
	threeYearAvg = (noa1+noa2+noa3)/3 + addbacks
	return qualifying, threeYearAvg
}
