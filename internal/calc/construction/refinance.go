package construction

import (
	"math"

	"github.com/kraftmortgages/calcserv/internal/calc/annuity"
)

// PenaltyMethod selects which prepayment penalty applies.
type PenaltyMethod string

const (
	PenaltyThreeMonth PenaltyMethod = "three_month"
	PenaltyIRD        PenaltyMethod = "ird"
	PenaltyHigher     PenaltyMethod = "higher" // max of both, the typical lender approach
)

// Default closing costs for a refinance.
const (
	defaultLegalFees    = 1500.0
	defaultAppraisalFee = 500.0
	defaultDischargeFee = 350.0
)

// RefinanceInput describes a contemplated refinance. Zero fee fields take
// the standard defaults; the penalty method defaults to PenaltyHigher.
type RefinanceInput struct {
	Balance            float64       `json:"balance"`
	CurrentRatePct     float64       `json:"current_rate_pct"`
	NewRatePct         float64       `json:"new_rate_pct"`
	RemainingTermMonth int           `json:"remaining_term_months"`
	NewAmortYears      float64       `json:"new_amort_years"`
	Method             PenaltyMethod `json:"method"`
	LegalFees          float64       `json:"legal_fees"`
	AppraisalFee       float64       `json:"appraisal_fee"`
	DischargeFee       float64       `json:"discharge_fee"`
}

// RefinanceResult is the penalty and break-even analysis.
// BreakEvenApplicable is false when monthly savings are not positive; in that
// state BreakEvenMonths is zero and must not be read as a break-even figure.
type RefinanceResult struct {
	ThreeMonthInterest  float64 `json:"three_month_interest"`
	IRDPenalty          float64 `json:"ird_penalty"`
	SelectedPenalty     float64 `json:"selected_penalty"`
	TotalCosts          float64 `json:"total_costs"`
	CurrentPayment      float64 `json:"current_payment"`
	NewPayment          float64 `json:"new_payment"`
	MonthlySavings      float64 `json:"monthly_savings"`
	BreakEvenMonths     int     `json:"break_even_months"`
	BreakEvenApplicable bool    `json:"break_even_applicable"`
	FiveYearSavings     float64 `json:"five_year_savings"`
	WorthRefinancing    bool    `json:"worth_refinancing"`
}

// ThreeMonthInterest is the simple three-month interest penalty.
func ThreeMonthInterest(balance, currentRatePct float64) float64 {
	return balance * (currentRatePct / 100 / 12) * 3
}

// IRDPenalty is the interest-rate-differential penalty over the remaining
// term. A new rate at or above the current rate yields zero.
func IRDPenalty(balance, currentRatePct, newRatePct float64, remainingTermMonths int) float64 {
	diff := math.Max(0, currentRatePct-newRatePct)
	return balance * diff / 100 / 12 * float64(remainingTermMonths)
}

// AnalyzeRefinance computes both penalties, applies the selected method, and
// determines break-even against the chosen closing costs.
func AnalyzeRefinance(in RefinanceInput) RefinanceResult {
	threeMonth := ThreeMonthInterest(in.Balance, in.CurrentRatePct)
	ird := IRDPenalty(in.Balance, in.CurrentRatePct, in.NewRatePct, in.RemainingTermMonth)

	method := in.Method
	if method == "" {
		method = PenaltyHigher
	}
	var selected float64
	switch method {
	case PenaltyThreeMonth:
		selected = threeMonth
	case PenaltyIRD:
		selected = ird
	default:
		selected = math.Max(threeMonth, ird)
	}

	legal := in.LegalFees
	if legal == 0 {
		legal = defaultLegalFees
	}
	appraisal := in.AppraisalFee
	if appraisal == 0 {
		appraisal = defaultAppraisalFee
	}
	discharge := in.DischargeFee
	if discharge == 0 {
		discharge = defaultDischargeFee
	}
	totalCosts := selected + legal + appraisal + discharge

	// The current payment retires the balance over the remaining term; the
	// new payment re-amortizes over the new schedule.
	currentPayment := annuity.Payment(in.CurrentRatePct, float64(in.RemainingTermMonth)/12, in.Balance)
	newPayment := annuity.Payment(in.NewRatePct, in.NewAmortYears, in.Balance)
	savings := currentPayment - newPayment

	r := RefinanceResult{
		ThreeMonthInterest: threeMonth,
		IRDPenalty:         ird,
		SelectedPenalty:    selected,
		TotalCosts:         totalCosts,
		CurrentPayment:     currentPayment,
		NewPayment:         newPayment,
		MonthlySavings:     savings,
		FiveYearSavings:    savings*60 - totalCosts,
	}
	if savings > 0 {
		r.BreakEvenApplicable = true
		r.BreakEvenMonths = int(math.Ceil(totalCosts / savings))
		r.WorthRefinancing = r.BreakEvenMonths < in.RemainingTermMonth
	}
	return r
}
