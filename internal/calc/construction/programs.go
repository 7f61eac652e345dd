package construction

// Program is one builder financing program from the lender catalog. The
// catalog is injected configuration, not a compiled-in constant, so the
// eligibility filter stays testable against arbitrary catalogs.
type Program struct {
	Name              string   `json:"name" yaml:"name"`
	Lender            string   `json:"lender" yaml:"lender"`
	MaxLTVPct         float64  `json:"max_ltv_pct" yaml:"max_ltv_pct"`
	MinDownPaymentPct float64  `json:"min_down_payment_pct" yaml:"min_down_payment_pct"`
	InterestRatePct   float64  `json:"interest_rate_pct" yaml:"interest_rate_pct"`
	MaxLoanAmount     float64  `json:"max_loan_amount" yaml:"max_loan_amount"`
	Features          []string `json:"features,omitempty" yaml:"features,omitempty"`
	Requirements      []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// ProgramMatch is one catalog entry evaluated against a project.
type ProgramMatch struct {
	Program          Program `json:"program"`
	Eligible         bool    `json:"eligible"`
	EstTotalInterest float64 `json:"estimated_total_interest"`
	EstMonthlyCost   float64 `json:"estimated_monthly_cost"`
	Reason           string  `json:"reason,omitempty"`
}

// ProjectInput describes a project to match against the catalog.
type ProjectInput struct {
	ProjectCost        float64 `json:"project_cost"`
	DownPayment        float64 `json:"down_payment"`
	ConstructionMonths int     `json:"construction_months"`
}

// MatchResult is the catalog evaluated for one project.
type MatchResult struct {
	LoanAmount     float64        `json:"loan_amount"`
	LTVPct         float64        `json:"ltv_pct"`
	EligibleCount  int            `json:"eligible_count"`
	Matches        []ProgramMatch `json:"matches"`
}

// MatchPrograms filters a catalog to the programs a project is eligible for
// and estimates financing cost for every entry. Eligibility requires the
// project LTV within the program maximum and the loan within the program
// ceiling; interest cost reuses the average-balance model.
func MatchPrograms(catalog []Program, in ProjectInput) MatchResult {
	loanAmount := in.ProjectCost - in.DownPayment
	var ltv float64
	if in.ProjectCost > 0 {
		ltv = loanAmount / in.ProjectCost * 100
	}

	matches := make([]ProgramMatch, 0, len(catalog))
	eligible := 0
	for _, p := range catalog {
		m := ProgramMatch{
			Program:          p,
			Eligible:         ltv <= p.MaxLTVPct && loanAmount <= p.MaxLoanAmount,
			EstTotalInterest: AverageBalanceInterest(loanAmount, p.InterestRatePct, in.ConstructionMonths),
		}
		if in.ConstructionMonths > 0 {
			m.EstMonthlyCost = m.EstTotalInterest / float64(in.ConstructionMonths)
		}
		if !m.Eligible {
			switch {
			case ltv > p.MaxLTVPct:
				m.Reason = "LTV exceeds program maximum"
			case loanAmount > p.MaxLoanAmount:
				m.Reason = "loan exceeds program maximum"
			}
		} else {
			eligible++
		}
		matches = append(matches, m)
	}

	return MatchResult{
		LoanAmount:    loanAmount,
		LTVPct:        ltv,
		EligibleCount: eligible,
		Matches:       matches,
	}
}

// DefaultCatalog is the brokerage's standing builder-program table, used when
// no catalog file is configured.
func DefaultCatalog() []Program {
	return []Program{
		{
			Name: "Prime Builder Program", Lender: "Major Bank A",
			MaxLTVPct: 75, MinDownPaymentPct: 25, InterestRatePct: 6.75, MaxLoanAmount: 2000000,
			Features:     []string{"Fast approval (5-7 days)", "Flexible draw schedule", "No builder insurance required"},
			Requirements: []string{"2+ years experience", "3+ completed projects", "Strong credit (680+)"},
		},
		{
			Name: "Emerging Builder", Lender: "Credit Union B",
			MaxLTVPct: 65, MinDownPaymentPct: 35, InterestRatePct: 7.25, MaxLoanAmount: 1000000,
			Features:     []string{"New builder friendly", "Project mentorship", "Competitive rates"},
			Requirements: []string{"1+ completed project", "Licensed contractor", "Detailed business plan"},
		},
		{
			Name: "Custom Home Builder", Lender: "Private Lender C",
			MaxLTVPct: 80, MinDownPaymentPct: 20, InterestRatePct: 8.50, MaxLoanAmount: 3000000,
			Features:     []string{"Higher LTV available", "Luxury home specialist", "Fast funding"},
			Requirements: []string{"5+ years experience", "Portfolio of work", "Strong reserves"},
		},
		{
			Name: "Spec Home Program", Lender: "Regional Bank D",
			MaxLTVPct: 70, MinDownPaymentPct: 30, InterestRatePct: 7.00, MaxLoanAmount: 1500000,
			Features:     []string{"Pre-approved lots", "Bulk pricing available", "Marketing support"},
			Requirements: []string{"3+ spec homes completed", "Pre-sale agreements", "Market analysis"},
		},
	}
}
