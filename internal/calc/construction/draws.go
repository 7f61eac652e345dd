// Package construction covers progressive-draw financing, builder-program
// eligibility and refinance penalty analysis.
//
// Interest estimates throughout use the average-outstanding-balance model
// (half the loan outstanding for the whole build). Dependent project-cost
// figures assume exactly this model; do not swap in a draw-weighted schedule
// without revisiting them.
package construction

import "math"

// Standard fee schedule for a construction loan.
const (
	appraisalFee        = 750.0
	legalFees           = 1200.0
	inspectionFeeMonth  = 150.0
	lenderFeeRate       = 0.005
	maxQualifyingLTVPct = 80.0
	minDownPaymentFrac  = 0.20
)

// DrawStage is one milestone of the progressive draw schedule. Percentage is
// the cumulative 0-100 share of the loan released by this stage.
type DrawStage struct {
	Stage       string  `json:"stage"`
	Percentage  float64 `json:"percentage"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// standardStages is the canonical milestone template. Percentages are
// strictly increasing and terminate at 100.
var standardStages = []DrawStage{
	{Stage: "Land Purchase", Percentage: 0, Description: "Initial land acquisition"},
	{Stage: "Foundation", Percentage: 15, Description: "Foundation and basement complete"},
	{Stage: "Framing", Percentage: 25, Description: "Framing and roof structure complete"},
	{Stage: "Lock-up", Percentage: 40, Description: "Exterior complete, windows/doors installed"},
	{Stage: "Mechanical", Percentage: 60, Description: "Plumbing, electrical, HVAC rough-in"},
	{Stage: "Drywall", Percentage: 75, Description: "Insulation and drywall complete"},
	{Stage: "Flooring", Percentage: 85, Description: "Flooring, cabinets, fixtures installed"},
	{Stage: "Final", Percentage: 95, Description: "Final inspections and occupancy permit"},
	{Stage: "Completion", Percentage: 100, Description: "Project complete, convert to permanent"},
}

// DrawInput describes a construction project. DownPaymentFraction is a 0-1
// fraction of total cost; the construction period is in months.
type DrawInput struct {
	TotalProjectCost    float64 `json:"total_project_cost"`
	LandValue           float64 `json:"land_value"`
	DownPaymentFraction float64 `json:"down_payment_fraction"`
	InterestRatePct     float64 `json:"interest_rate_pct"`
	PeriodMonths        int     `json:"period_months"`
}

// DrawResult is the generated schedule with cost and qualification figures.
type DrawResult struct {
	TotalCost            float64     `json:"total_cost"`
	LoanAmount           float64     `json:"loan_amount"`
	DownPaymentAmount    float64     `json:"down_payment_amount"`
	Schedule             []DrawStage `json:"schedule"`
	TotalInterestCost    float64     `json:"total_interest_cost"`
	MonthlyInterestEst   float64     `json:"monthly_interest_estimate"`
	TotalFees            float64     `json:"total_fees"`
	LoanToValuePct       float64     `json:"loan_to_value_pct"`
	LoanToCostPct        float64     `json:"loan_to_cost_pct"`
	Qualifies            bool        `json:"qualifies"`
	ConstructionPeriodMo int         `json:"construction_period_months"`
}

// AverageBalanceInterest estimates total construction interest assuming the
// average outstanding balance is half the loan for the whole period.
func AverageBalanceInterest(loanAmount, annualRatePct float64, periodMonths int) float64 {
	avgBalance := loanAmount / 2
	return avgBalance * (annualRatePct / 100) * (float64(periodMonths) / 12)
}

// GenerateDrawSchedule builds the milestone schedule for a project. Stage
// amounts are cumulative percentages of the loan; the land stage is
// overridden to the land value (capped at the loan) when land is financed.
func GenerateDrawSchedule(in DrawInput) DrawResult {
	totalCost := in.TotalProjectCost + in.LandValue
	downPayment := totalCost * in.DownPaymentFraction
	loanAmount := totalCost - downPayment

	schedule := make([]DrawStage, len(standardStages))
	copy(schedule, standardStages)
	for i := range schedule {
		schedule[i].Amount = schedule[i].Percentage / 100 * loanAmount
	}
	if in.LandValue > 0 {
		schedule[0].Amount = math.Min(in.LandValue, loanAmount)
	}

	totalInterest := AverageBalanceInterest(loanAmount, in.InterestRatePct, in.PeriodMonths)

	totalFees := appraisalFee + legalFees +
		float64(in.PeriodMonths)*inspectionFeeMonth +
		loanAmount*lenderFeeRate

	var ltv, ltc, monthlyInterest float64
	if totalCost > 0 {
		ltv = loanAmount / totalCost * 100
	}
	if in.TotalProjectCost > 0 {
		ltc = loanAmount / in.TotalProjectCost * 100
	}
	if in.PeriodMonths > 0 {
		monthlyInterest = totalInterest / float64(in.PeriodMonths)
	}

	return DrawResult{
		TotalCost:            totalCost,
		LoanAmount:           loanAmount,
		DownPaymentAmount:    downPayment,
		Schedule:             schedule,
		TotalInterestCost:    totalInterest,
		MonthlyInterestEst:   monthlyInterest,
		TotalFees:            totalFees,
		LoanToValuePct:       ltv,
		LoanToCostPct:        ltc,
		Qualifies:            ltv <= maxQualifyingLTVPct && in.DownPaymentFraction >= minDownPaymentFrac,
		ConstructionPeriodMo: in.PeriodMonths,
	}
}
