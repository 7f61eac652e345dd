// Package mliselect scores multi-unit projects under the CMHC MLI Select
// program and derives the tier-dependent financing terms: amortization
// ceiling, leverage and premium discount.
//
// Point thresholds and tier breakpoints (50/70/100) are fixed program
// constants used consistently across every calculator; they are never
// re-derived.
package mliselect

import "github.com/kraftmortgages/calcserv/internal/calc/annuity"

// Tier is the MLI Select benefit tier. Tier 1 is the floor for any score
// below 50 points; 100 points is the maximum achievable score.
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// MinAnnualDSCR is the minimum debt service coverage the program requires
// when sizing a loan from NOI. This is the annualized DSCR convention,
// distinct from the monthly DSCR in the investment package.
const MinAnnualDSCR = 1.10

// Accessibility describes the accessibility commitments of a project.
// Percentage fields are 0-100; RHFScore is the Rick Hansen Foundation rating.
type Accessibility struct {
	VisitableAll       bool    `json:"visitable_all"`
	CommonsBarrierFree bool    `json:"commons_barrier_free"`
	PctAccessible      float64 `json:"pct_accessible"`
	PctUniversal       float64 `json:"pct_universal"`
	RHFScore           float64 `json:"rhf_score"`
}

// PointsInput is the full scoring questionnaire.
type PointsInput struct {
	IsNewConstruction        bool          `json:"is_new_construction"`
	AffordableUnitPct        float64       `json:"affordable_unit_pct"`
	AffordabilityYears       float64       `json:"affordability_years"`
	EnergyImprovementPct     float64       `json:"energy_improvement_pct"`
	AccessibilityCommitments Accessibility `json:"accessibility"`
}

// Score is the scored outcome with the tier-dependent financing terms.
type Score struct {
	AffordabilityPoints int     `json:"affordability_points"`
	EnergyPoints        int     `json:"energy_points"`
	AccessibilityPoints int     `json:"accessibility_points"`
	TotalPoints         int     `json:"total_points"`
	Tier                Tier    `json:"tier"`
	MaxAmortYears       float64 `json:"max_amort_years"`
	Leverage            float64 `json:"leverage"`
	PremiumDiscount     float64 `json:"premium_discount"`
}

// AffordabilityPoints scores the affordability commitment. New construction
// earns points at lower affordable-unit percentages than existing buildings;
// a commitment of 20+ years adds a 30-point bonus when any base was earned.
func AffordabilityPoints(isNew bool, affordableUnitPct, years float64) int {
	base := 0
	if isNew {
		switch {
		case affordableUnitPct >= 25:
			base = 100
		case affordableUnitPct >= 15:
			base = 70
		case affordableUnitPct >= 10:
			base = 50
		}
	} else {
		switch {
		case affordableUnitPct >= 80:
			base = 100
		case affordableUnitPct >= 60:
			base = 70
		case affordableUnitPct >= 40:
			base = 50
		}
	}
	if base > 0 && years >= 20 {
		base += 30
	}
	return base
}

// EnergyPoints scores energy-efficiency improvement over the reference
// building as a monotonic step function.
func EnergyPoints(improvementPct float64) int {
	switch {
	case improvementPct >= 40:
		return 50
	case improvementPct >= 25:
		return 35
	case improvementPct >= 15:
		return 20
	default:
		return 0
	}
}

// AccessibilityPoints scores accessibility commitments. Both gate criteria
// (all units visitable, barrier-free common areas) are required before any
// points are earned.
func AccessibilityPoints(a Accessibility) int {
	if !a.VisitableAll || !a.CommonsBarrierFree {
		return 0
	}
	level2 := (a.PctAccessible >= 15 && a.PctUniversal >= 85) ||
		a.PctUniversal == 100 ||
		a.PctAccessible == 100 ||
		a.RHFScore >= 80
	if level2 {
		return 30
	}
	level1 := a.PctAccessible >= 15 || a.PctUniversal >= 15 ||
		(a.RHFScore >= 60 && a.RHFScore < 80)
	if level1 {
		return 20
	}
	return 0
}

// TierFromPoints classifies a total score. Breakpoints are inclusive: 50
// points reaches Tier 2 and 70 points reaches Tier 3.
func TierFromPoints(totalPoints int) Tier {
	switch {
	case totalPoints >= 70:
		return Tier3
	case totalPoints >= 50:
		return Tier2
	default:
		return Tier1
	}
}

// MaxAmortYears is the amortization ceiling granted by a tier.
func MaxAmortYears(t Tier) float64 {
	switch t {
	case Tier3:
		return 45
	case Tier2:
		return 40
	default:
		return 25
	}
}

// Leverage is the maximum loan-to-value (existing) or loan-to-cost (new
// construction) fraction for a tier. Existing buildings below Tier 2 are not
// eligible for program leverage.
func Leverage(isNewConstruction bool, t Tier) float64 {
	if isNewConstruction {
		return 0.95
	}
	switch t {
	case Tier3:
		return 0.95
	case Tier2:
		return 0.85
	default:
		return 0
	}
}

// PremiumDiscount is the fraction knocked off the base insurance premium
// rate for a tier.
func PremiumDiscount(t Tier) float64 {
	switch t {
	case Tier3:
		return 0.25
	case Tier2:
		return 0.10
	default:
		return 0
	}
}

// CalculateScore runs the three scoring dimensions and attaches the
// tier-dependent financing terms.
func CalculateScore(in PointsInput) Score {
	a := AffordabilityPoints(in.IsNewConstruction, in.AffordableUnitPct, in.AffordabilityYears)
	e := EnergyPoints(in.EnergyImprovementPct)
	acc := AccessibilityPoints(in.AccessibilityCommitments)
	total := a + e + acc
	tier := TierFromPoints(total)

	return Score{
		AffordabilityPoints: a,
		EnergyPoints:        e,
		AccessibilityPoints: acc,
		TotalPoints:         total,
		Tier:                tier,
		MaxAmortYears:       MaxAmortYears(tier),
		Leverage:            Leverage(in.IsNewConstruction, tier),
		PremiumDiscount:     PremiumDiscount(tier),
	}
}

// MaxLoanFromValueOrCost applies the tier leverage to a project value (or
// total cost for new construction).
func MaxLoanFromValueOrCost(isNewConstruction bool, t Tier, valueOrCost float64) float64 {
	return valueOrCost * Leverage(isNewConstruction, t)
}

// FinalPremiumRate applies the tier discount to a base premium rate.
func FinalPremiumRate(basePremiumRatePct float64, t Tier) float64 {
	return basePremiumRatePct * (1 - PremiumDiscount(t))
}

// MaxLoanAtMinDSCR sizes the largest loan whose debt service annual NOI can
// carry at the program's minimum annualized coverage of 1.10. noiAnnual is
// annual; the amortization uses the tier ceiling unless overridden.
func MaxLoanAtMinDSCR(noiAnnual, annualRatePct, amortYears float64) float64 {
	if noiAnnual <= 0 {
		return 0
	}
	paymentPerDollar := annuity.Payment(annualRatePct, amortYears, 1)
	if paymentPerDollar <= 0 {
		return 0
	}
	requiredMonthly := noiAnnual / MinAnnualDSCR / 12
	return requiredMonthly / paymentPerDollar
}

// PillarScores are per-pillar outcome scores on a 0-100 scale, the input to
// the coarse premium estimator. A pillar counts as attained at 60 or more.
type PillarScores struct {
	Affordability float64 `json:"affordability"`
	Energy        float64 `json:"energy"`
	Accessibility float64 `json:"accessibility"`
}

// PillarPremium is the coarse premium estimate. Rate is a 0-1 fraction.
type PillarPremium struct {
	Rate     float64  `json:"rate"`
	Premium  float64  `json:"premium"`
	Attained []string `json:"attained"`
}

const pillarAttainmentScore = 60.0

// EstimatePremiumByPillars is the coarse premium model that coexists with the
// tier-discount model in FinalPremiumRate: the base 4% premium steps down with
// each attained pillar, with a sole affordability pillar worth slightly less
// of a reduction than a sole energy or accessibility pillar.
func EstimatePremiumByPillars(scores PillarScores, loanAmount float64) PillarPremium {
	var attained []string
	if scores.Accessibility >= pillarAttainmentScore {
		attained = append(attained, "accessibility")
	}
	if scores.Affordability >= pillarAttainmentScore {
		attained = append(attained, "affordability")
	}
	if scores.Energy >= pillarAttainmentScore {
		attained = append(attained, "energy")
	}

	var rate float64
	switch len(attained) {
	case 0:
		rate = 0.04
	case 1:
		if attained[0] == "affordability" {
			rate = 0.035
		} else {
			rate = 0.0325
		}
	case 2:
		rate = 0.028
	default:
		rate = 0.025
	}

	return PillarPremium{
		Rate:     rate,
		Premium:  loanAmount * rate,
		Attained: attained,
	}
}

// BreakEvenRentPerUnit is the minimum monthly rent per unit covering debt
// service and operating costs, optionally with a safety margin (a 0-1
// fraction). Zero units yields zero rather than a division blow-up.
func BreakEvenRentPerUnit(monthlyDebtService, otherMonthlyOpex float64, units int, targetMargin float64) float64 {
	if units <= 0 {
		return 0
	}
	needed := (monthlyDebtService + otherMonthlyOpex) * (1 + targetMargin)
	return needed / float64(units)
}

// RentCapFromMedian is the affordable monthly rent ceiling: 30% of the
// median annual household income.
func RentCapFromMedian(medianAnnualIncome float64) float64 {
	return medianAnnualIncome * 0.30 / 12
}
