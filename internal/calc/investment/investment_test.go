package investment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCashflow_Basic(t *testing.T) {
	r := Cashflow(Input{
		Price:           800000,
		DownPayment:     200000,
		RatePct:         5.45,
		AmortYears:      25,
		RentMonthly:     4200,
		VacancyPct:      3,
		ExpensesMonthly: 1200,
	})

	assert.Equal(t, 600000.0, r.Loan)
	assert.InDelta(t, 4200*0.97, r.EffectiveRent, 0.001)
	assert.InDelta(t, r.EffectiveRent-1200, r.NOI, 0.001)
	assert.InDelta(t, r.NOI-r.Payment, r.Cashflow, 0.001)
	assert.InDelta(t, r.NOI*12/800000*100, r.CapRatePct, 0.001)
	assert.InDelta(t, r.NOI/r.Payment, r.DSCR, 0.0001)
}

func TestCashflow_ZeroPriceAndNoDebt(t *testing.T) {
	r := Cashflow(Input{RentMonthly: 1000, VacancyPct: 0})
	assert.Zero(t, r.CapRatePct)
	assert.Zero(t, r.DSCR)
	assert.Zero(t, r.Payment)
}

func TestCommercialAnalysis_PinnedExample(t *testing.T) {
	// $2.5M purchase, $625K down, 6.25% over 25y, $300K gross rent, 5%
	// vacancy, $141K total operating costs.
	r := CommercialAnalysis(CommercialInput{
		PurchasePrice:     2500000,
		DownPayment:       625000,
		RatePct:           6.25,
		AmortYears:        25,
		GrossRentAnnual:   300000,
		VacancyPct:        5,
		OperatingExpenses: 90000,
		PropertyTaxes:     24000,
		Insurance:         12000,
		Maintenance:       15000,
	})

	assert.Equal(t, 1875000.0, r.LoanAmount)
	assert.InDelta(t, 285000, r.EffectiveGrossInc, 0.01)
	assert.InDelta(t, 144000, r.NOI, 0.01)
	// Pinned from the formula: payment ~$12,368.92/mo.
	assert.InDelta(t, 12368.92, r.MonthlyPayment, 0.5)
	assert.InDelta(t, r.NOI/(r.MonthlyPayment*12), r.DSCR, 0.0001)
	assert.InDelta(t, 0.970, r.DSCR, 0.005)
	// Cap rate = (EGI - OpEx) / price * 100 = 5.76%.
	assert.InDelta(t, 5.76, r.CapRatePct, 0.001)
	assert.InDelta(t, 75.0, r.LoanToValuePct, 0.001)
	// Below both DSCR and cap thresholds at these numbers.
	assert.False(t, r.GoodInvestment)
}

func TestCommercialAnalysis_Qualifying(t *testing.T) {
	r := CommercialAnalysis(CommercialInput{
		PurchasePrice:     2000000,
		DownPayment:       800000,
		RatePct:           5.0,
		AmortYears:        25,
		GrossRentAnnual:   260000,
		VacancyPct:        4,
		OperatingExpenses: 60000,
		PropertyTaxes:     20000,
		Insurance:         10000,
		Maintenance:       10000,
	})

	assert.GreaterOrEqual(t, r.DSCR, MinCommercialDSCR)
	assert.GreaterOrEqual(t, r.CapRatePct, MinCommercialCapPct)
	assert.True(t, r.CashflowPositive)
	assert.True(t, r.GoodInvestment)
	assert.Greater(t, r.CashOnCashReturnPct, 0.0)
}

func TestCommercialAnalysis_ZeroDenominators(t *testing.T) {
	r := CommercialAnalysis(CommercialInput{GrossRentAnnual: 100000})
	assert.Zero(t, r.DSCR)
	assert.Zero(t, r.CapRatePct)
	assert.Zero(t, r.CashOnCashReturnPct)
	assert.False(t, r.GoodInvestment)
}
