// Package affordability implements GDS/TDS-constrained pre-approval sizing
// under the regulatory stress test, plus the equity debt-consolidation and
// self-employed income helpers that build on the same ratio rules.
//
// Down payments are 0-1 fractions; GDS/TDS ratios are 0-100 percentages.
// The two conventions are deliberate and must not be unified.
package affordability

import "github.com/kraftmortgages/calcserv/internal/calc/annuity"

// Regulatory constants. GDS and TDS caps are the insured-mortgage
// qualification limits; the stress test rate is the Bank of Canada
// qualifying rate and does not vary with credit score.
const (
	StressTestRatePct = 5.25
	MaxGDSPct         = 39.0
	MaxTDSPct         = 44.0

	qualifyingAmortYears = 25
	minDownPaymentFrac   = 0.05
	highRatioThreshold   = 0.20
)

// Default monthly carrying costs applied when the caller omits them. An
// explicit zero is a real value (paid-off taxes, included heat) and is
// honored, so the optional fields are pointers.
const (
	DefaultHeatingMonthly     = 150.0
	DefaultPropertyTaxMonthly = 300.0
	DefaultCondoFeesMonthly   = 0.0
)

// Input is the full pre-approval questionnaire.
type Input struct {
	GrossAnnualIncome   float64  `json:"gross_annual_income"`
	MonthlyDebts        float64  `json:"monthly_debts"`
	DownPaymentFraction float64  `json:"down_payment_fraction"`
	CreditScore         int      `json:"credit_score"`
	HeatingMonthly      *float64 `json:"heating_monthly,omitempty"`
	PropertyTaxMonthly  *float64 `json:"property_tax_monthly,omitempty"`
	CondoFeesMonthly    float64  `json:"condo_fees_monthly"`
}

// Result is the pre-approval outcome. Ratios are surfaced even when the
// applicant does not qualify so callers can render them.
type Result struct {
	MaxPurchasePrice  float64 `json:"max_purchase_price"`
	MaxMortgageAmount float64 `json:"max_mortgage_amount"`
	MonthlyPayment    float64 `json:"monthly_payment"`
	GDSRatioPct       float64 `json:"gds_ratio_pct"`
	TDSRatioPct       float64 `json:"tds_ratio_pct"`
	Qualifies         bool    `json:"qualifies"`
	MortgageRatePct   float64 `json:"mortgage_rate_pct"`
	StressTestRatePct float64 `json:"stress_test_rate_pct"`
	IsHighRatio       bool    `json:"is_high_ratio"`
	CMHCPremium       float64 `json:"cmhc_premium"`
	Recommendation    string  `json:"recommendation"`
}

// RateForCreditScore maps a credit score to the contract mortgage rate tier.
func RateForCreditScore(score int) float64 {
	switch {
	case score >= 780:
		return 5.49
	case score >= 720:
		return 5.69
	case score >= 680:
		return 5.89
	case score >= 640:
		return 6.19
	default:
		return 6.89
	}
}

// CMHCPremiumRate returns the mortgage insurance premium rate for a
// high-ratio loan as a step function of the effective down payment fraction.
// Conventional (>=20% down) loans carry no premium.
func CMHCPremiumRate(downPaymentFraction float64) float64 {
	if downPaymentFraction >= highRatioThreshold {
		return 0
	}
	switch {
	case downPaymentFraction < 0.10:
		return 0.04
	case downPaymentFraction < 0.15:
		return 0.031
	default:
		return 0.028
	}
}

// Calculate sizes the maximum affordable purchase under the stress test and
// reports the real payment at the contract rate. Insufficient income degrades
// to a zeroed non-qualifying result; it never errors.
func Calculate(in Input) Result {
	mortgageRate := RateForCreditScore(in.CreditScore)

	heating := DefaultHeatingMonthly
	if in.HeatingMonthly != nil {
		heating = *in.HeatingMonthly
	}
	propertyTax := DefaultPropertyTaxMonthly
	if in.PropertyTaxMonthly != nil {
		propertyTax = *in.PropertyTaxMonthly
	}
	condo := in.CondoFeesMonthly

	isHighRatio := in.DownPaymentFraction < highRatioThreshold
	minDown := in.DownPaymentFraction
	if minDown < minDownPaymentFrac {
		minDown = minDownPaymentFrac
	}

	monthlyIncome := in.GrossAnnualIncome / 12

	maxGDS := monthlyIncome * (MaxGDSPct / 100)
	availableForMortgage := maxGDS - heating - propertyTax - condo

	maxTDS := monthlyIncome * (MaxTDSPct / 100)
	availableWithDebts := maxTDS - heating - propertyTax - condo - in.MonthlyDebts

	maxMortgagePayment := availableForMortgage
	if availableWithDebts < maxMortgagePayment {
		maxMortgagePayment = availableWithDebts
	}

	if maxMortgagePayment <= 0 {
		return Result{
			Qualifies:         false,
			MortgageRatePct:   mortgageRate,
			StressTestRatePct: StressTestRatePct,
			IsHighRatio:       isHighRatio,
			Recommendation:    "Income insufficient for qualification",
		}
	}

	// Size the loan at the stress test rate, not the contract rate.
	maxMortgageAmount := annuity.MaxPrincipal(StressTestRatePct, qualifyingAmortYears, maxMortgagePayment)
	maxPurchasePrice := maxMortgageAmount / (1 - minDown)

	var cmhcPremium float64
	if isHighRatio {
		cmhcPremium = maxMortgageAmount * CMHCPremiumRate(minDown)
	}

	// The premium is financed: it rolls into the insured loan amount, and
	// the payment shown to the applicant uses the contract rate.
	insuredAmount := maxMortgageAmount + cmhcPremium
	monthlyPayment := annuity.Payment(mortgageRate, qualifyingAmortYears, insuredAmount)

	totalHousing := monthlyPayment + heating + propertyTax + condo
	gds := totalHousing / monthlyIncome * 100
	tds := (totalHousing + in.MonthlyDebts) / monthlyIncome * 100

	qualifies := gds <= MaxGDSPct && tds <= MaxTDSPct && maxMortgagePayment > 0

	var recommendation string
	switch {
	case qualifies:
		recommendation = "You qualify for pre-approval!"
	case gds > MaxGDSPct:
		recommendation = "Reduce housing costs or increase income"
	case tds > MaxTDSPct:
		recommendation = "Pay down existing debts to improve qualification"
	}

	return Result{
		MaxPurchasePrice:  maxPurchasePrice,
		MaxMortgageAmount: insuredAmount,
		MonthlyPayment:    monthlyPayment,
		GDSRatioPct:       gds,
		TDSRatioPct:       tds,
		Qualifies:         qualifies,
		MortgageRatePct:   mortgageRate,
		StressTestRatePct: StressTestRatePct,
		IsHighRatio:       isHighRatio,
		CMHCPremium:       cmhcPremium,
		Recommendation:    recommendation,
	}
}
