// Package investment analyzes income-property cash flow.
//
// Two DSCR conventions exist in this domain and both are kept, deliberately
// and under distinct names: Cashflow reports a simplified monthly DSCR
// (monthly NOI over the monthly payment), while CommercialAnalysis reports
// the annualized DSCR (annual NOI over annual debt service) that commercial
// underwriting uses. They are not interchangeable.
package investment

import "github.com/kraftmortgages/calcserv/internal/calc/annuity"

// Commercial qualification thresholds. Domain constants, not derived.
const (
	MinCommercialDSCR   = 1.25
	MinCommercialCapPct = 6.0
)

// Input describes a rental property purchase. VacancyPct is a 0-100
// percentage; rent and expenses are monthly.
type Input struct {
	Price           float64 `json:"price"`
	DownPayment     float64 `json:"down_payment"`
	RatePct         float64 `json:"rate_pct"`
	AmortYears      float64 `json:"amort_years"`
	RentMonthly     float64 `json:"rent_monthly"`
	VacancyPct      float64 `json:"vacancy_pct"`
	ExpensesMonthly float64 `json:"expenses_monthly"`
}

// CashflowResult holds monthly figures. DSCR here is monthly NOI over the
// monthly payment; it is zero, not infinite, when there is no debt service.
type CashflowResult struct {
	Loan          float64 `json:"loan"`
	Payment       float64 `json:"payment"`
	EffectiveRent float64 `json:"effective_rent"`
	NOI           float64 `json:"noi"`
	Cashflow      float64 `json:"cashflow"`
	CapRatePct    float64 `json:"cap_rate_pct"`
	DSCR          float64 `json:"dscr"`
}

// Cashflow computes monthly NOI, cash flow, cap rate and monthly DSCR for a
// residential rental. A zero price yields a zero cap rate rather than a
// division blow-up.
func Cashflow(in Input) CashflowResult {
	loan := in.Price - in.DownPayment
	pmt := annuity.Payment(in.RatePct, in.AmortYears, loan)
	effRent := in.RentMonthly * (1 - in.VacancyPct/100)
	noi := effRent - in.ExpensesMonthly
	cf := noi - pmt

	var capRate float64
	if in.Price > 0 {
		capRate = noi * 12 / in.Price * 100
	}
	var dscr float64
	if pmt > 0 {
		dscr = noi / pmt
	}

	return CashflowResult{
		Loan:          loan,
		Payment:       pmt,
		EffectiveRent: effRent,
		NOI:           noi,
		Cashflow:      cf,
		CapRatePct:    capRate,
		DSCR:          dscr,
	}
}

// CommercialInput describes a commercial acquisition with itemized annual
// operating costs. GrossRentAnnual is annual; VacancyPct is 0-100.
type CommercialInput struct {
	PurchasePrice     float64 `json:"purchase_price"`
	DownPayment       float64 `json:"down_payment"`
	RatePct           float64 `json:"rate_pct"`
	AmortYears        float64 `json:"amort_years"`
	GrossRentAnnual   float64 `json:"gross_rent_annual"`
	VacancyPct        float64 `json:"vacancy_pct"`
	OperatingExpenses float64 `json:"operating_expenses_annual"`
	PropertyTaxes     float64 `json:"property_taxes_annual"`
	Insurance         float64 `json:"insurance_annual"`
	Maintenance       float64 `json:"maintenance_annual"`
}

// CommercialResult holds annualized underwriting metrics.
type CommercialResult struct {
	LoanAmount          float64 `json:"loan_amount"`
	MonthlyPayment      float64 `json:"monthly_payment"`
	EffectiveGrossInc   float64 `json:"effective_gross_income"`
	NOI                 float64 `json:"noi"`
	AnnualDebtService   float64 `json:"annual_debt_service"`
	BeforeTaxCashflow   float64 `json:"before_tax_cashflow"`
	DSCR                float64 `json:"dscr"`
	CapRatePct          float64 `json:"cap_rate_pct"`
	CashOnCashReturnPct float64 `json:"cash_on_cash_return_pct"`
	LoanToValuePct      float64 `json:"loan_to_value_pct"`
	QualifiesDSCR       bool    `json:"qualifies_dscr"`
	QualifiesCapRate    bool    `json:"qualifies_cap_rate"`
	CashflowPositive    bool    `json:"cashflow_positive"`
	GoodInvestment      bool    `json:"good_investment"`
}

// CommercialAnalysis runs the commercial-grade underwriting screen:
// annualized DSCR, cap rate, cash-on-cash and LTV, with the combined
// qualification flag dscr>=1.25 && capRate>=6.0 && positive cash flow.
func CommercialAnalysis(in CommercialInput) CommercialResult {
	loan := in.PurchasePrice - in.DownPayment
	monthly := annuity.Payment(in.RatePct, in.AmortYears, loan)

	egi := in.GrossRentAnnual * (1 - in.VacancyPct/100)
	totalExpenses := in.OperatingExpenses + in.PropertyTaxes + in.Insurance + in.Maintenance
	noi := egi - totalExpenses
	annualDebt := monthly * 12
	cashflow := noi - annualDebt

	var dscr float64
	if annualDebt > 0 {
		dscr = noi / annualDebt
	}
	var capRate, ltv float64
	if in.PurchasePrice > 0 {
		capRate = noi / in.PurchasePrice * 100
		ltv = loan / in.PurchasePrice * 100
	}
	var cashOnCash float64
	if in.DownPayment > 0 {
		cashOnCash = cashflow / in.DownPayment * 100
	}

	dscrOK := dscr >= MinCommercialDSCR
	capOK := capRate >= MinCommercialCapPct
	cfOK := cashflow > 0

	return CommercialResult{
		LoanAmount:          loan,
		MonthlyPayment:      monthly,
		EffectiveGrossInc:   egi,
		NOI:                 noi,
		AnnualDebtService:   annualDebt,
		BeforeTaxCashflow:   cashflow,
		DSCR:                dscr,
		CapRatePct:          capRate,
		CashOnCashReturnPct: cashOnCash,
		LoanToValuePct:      ltv,
		QualifiesDSCR:       dscrOK,
		QualifiesCapRate:    capOK,
		CashflowPositive:    cfOK,
		GoodInvestment:      dscrOK && capOK && cfOK,
	}
}
