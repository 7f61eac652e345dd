package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/kraftmortgages/calcserv/internal/cache"
	"github.com/kraftmortgages/calcserv/internal/calc/affordability"
	"github.com/kraftmortgages/calcserv/internal/calc/annuity"
	"github.com/kraftmortgages/calcserv/internal/calc/construction"
	"github.com/kraftmortgages/calcserv/internal/calc/investment"
	"github.com/kraftmortgages/calcserv/internal/calc/mliselect"
	"github.com/kraftmortgages/calcserv/internal/models"
	"github.com/kraftmortgages/calcserv/internal/repository"
)

// Input bounds. The engine itself degrades gracefully, but requests beyond
// these are certainly mistakes and are rejected before computing.
const (
	MaxMoneyAmount = 1_000_000_000.0
	MaxRatePct     = 100.0
	MaxAmortYears  = 50.0
	MaxTermMonths  = 600
)

// Validation errors surfaced to the API layer as bad requests.
var (
	ErrNonFiniteInput = errors.New("input values must be finite numbers")
	ErrAmountRange    = errors.New("amount out of range")
	ErrRateRange      = errors.New("rate out of range")
	ErrTermRange      = errors.New("term out of range")
)

// Service handles calculator business logic: validation, computation,
// result caching and scenario persistence.
type Service struct {
	repo    repository.ScenarioStore
	cache   cache.Cache
	log     *logrus.Logger
	catalog []construction.Program
}

// NewService initializes a new service. catalog is the builder-program table
// to match projects against; pass construction.DefaultCatalog() when no
// catalog file is configured.
func NewService(repo repository.ScenarioStore, c cache.Cache, log *logrus.Logger, catalog []construction.Program) *Service {
	return &Service{repo: repo, cache: c, log: log, catalog: catalog}
}

// checkFinite rejects NaN and infinity. Anything else is within the engine's
// documented numeric domain.
func checkFinite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteInput
		}
	}
	return nil
}

func checkMoney(values ...float64) error {
	if err := checkFinite(values...); err != nil {
		return err
	}
	for _, v := range values {
		if v < 0 || v > MaxMoneyAmount {
			return ErrAmountRange
		}
	}
	return nil
}

func checkRate(values ...float64) error {
	if err := checkFinite(values...); err != nil {
		return err
	}
	for _, v := range values {
		if v < 0 || v > MaxRatePct {
			return ErrRateRange
		}
	}
	return nil
}

// fromCache loads a previously computed result for identical input into out.
// Any failure is treated as a miss.
func (s *Service) fromCache(calculator string, input, out any) bool {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return false
	}
	val, ok := s.cache.Get(cache.Key(calculator, inputJSON))
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		s.log.Warnf("discarding unreadable cached %s result: %v", calculator, err)
		return false
	}
	return true
}

// record caches the result and persists a scenario row. Neither failure is
// fatal to the calculation; both are logged and the result still returned.
func (s *Service) record(calculator string, input, result any) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		s.log.Warnf("failed to serialize %s input: %v", calculator, err)
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.log.Warnf("failed to serialize %s result: %v", calculator, err)
		return
	}

	if err := s.cache.Set(cache.Key(calculator, inputJSON), string(resultJSON)); err != nil {
		s.log.Warnf("failed to cache %s result: %v", calculator, err)
	}

	scenario := &models.Scenario{
		Calculator: calculator,
		Input:      inputJSON,
		Result:     resultJSON,
	}
	if err := s.repo.Save(scenario); err != nil {
		s.log.Warnf("failed to save %s scenario: %v", calculator, err)
		return
	}
	s.log.Infof("Scenario saved: %s #%d", calculator, scenario.ID)
}

// PaymentInput is a plain amortized-payment request.
type PaymentInput struct {
	Principal  float64 `json:"principal"`
	RatePct    float64 `json:"rate_pct"`
	AmortYears float64 `json:"amort_years"`
}

// PaymentResult reports the payment and lifetime cost of a loan, plus the
// accelerated-biweekly comparison.
type PaymentResult struct {
	MonthlyPayment float64                    `json:"monthly_payment"`
	TotalCost      float64                    `json:"total_cost"`
	TotalInterest  float64                    `json:"total_interest"`
	Biweekly       annuity.BiweeklyComparison `json:"biweekly"`
}

// CalculatePayment computes the monthly payment and total cost of a loan.
func (s *Service) CalculatePayment(in PaymentInput) (PaymentResult, error) {
	if err := checkMoney(in.Principal); err != nil {
		return PaymentResult{}, err
	}
	if err := checkRate(in.RatePct); err != nil {
		return PaymentResult{}, err
	}
	if err := checkFinite(in.AmortYears); err != nil {
		return PaymentResult{}, err
	}
	if in.Principal <= 0 {
		return PaymentResult{}, fmt.Errorf("%w: principal must be positive", ErrAmountRange)
	}
	if in.AmortYears <= 0 || in.AmortYears > MaxAmortYears {
		return PaymentResult{}, ErrTermRange
	}

	var result PaymentResult
	if s.fromCache("payment", in, &result) {
		return result, nil
	}

	monthly := annuity.Payment(in.RatePct, in.AmortYears, in.Principal)
	total := monthly * in.AmortYears * 12
	result = PaymentResult{
		MonthlyPayment: monthly,
		TotalCost:      total,
		TotalInterest:  total - in.Principal,
		Biweekly:       annuity.BiweeklySavings(in.RatePct, in.AmortYears, in.Principal),
	}
	s.record("payment", in, result)
	return result, nil
}

// AmortizationSchedule returns the full period-by-period schedule for a loan.
func (s *Service) AmortizationSchedule(in PaymentInput) ([]annuity.ScheduleEntry, error) {
	if err := checkMoney(in.Principal); err != nil {
		return nil, err
	}
	if err := checkRate(in.RatePct); err != nil {
		return nil, err
	}
	if err := checkFinite(in.AmortYears); err != nil {
		return nil, err
	}
	if in.Principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive", ErrAmountRange)
	}
	if in.AmortYears <= 0 || in.AmortYears > MaxAmortYears {
		return nil, ErrTermRange
	}
	return annuity.Schedule(in.RatePct, in.AmortYears, in.Principal), nil
}

// Affordability runs the pre-approval engine.
func (s *Service) Affordability(in affordability.Input) (affordability.Result, error) {
	if err := checkMoney(in.GrossAnnualIncome, in.MonthlyDebts, in.CondoFeesMonthly); err != nil {
		return affordability.Result{}, err
	}
	for _, opt := range []*float64{in.HeatingMonthly, in.PropertyTaxMonthly} {
		if opt == nil {
			continue
		}
		if err := checkMoney(*opt); err != nil {
			return affordability.Result{}, err
		}
	}
	if err := checkFinite(in.DownPaymentFraction); err != nil {
		return affordability.Result{}, err
	}
	if in.DownPaymentFraction < 0 || in.DownPaymentFraction > 1 {
		return affordability.Result{}, fmt.Errorf("%w: down payment fraction must be within [0,1]", ErrAmountRange)
	}

	var result affordability.Result
	if s.fromCache("affordability", in, &result) {
		return result, nil
	}
	result = affordability.Calculate(in)
	s.record("affordability", in, result)
	return result, nil
}

// Investment runs the residential cash-flow analysis.
func (s *Service) Investment(in investment.Input) (investment.CashflowResult, error) {
	if err := checkMoney(in.Price, in.DownPayment, in.RentMonthly, in.ExpensesMonthly); err != nil {
		return investment.CashflowResult{}, err
	}
	if err := checkRate(in.RatePct, in.VacancyPct); err != nil {
		return investment.CashflowResult{}, err
	}

	var result investment.CashflowResult
	if s.fromCache("investment", in, &result) {
		return result, nil
	}
	result = investment.Cashflow(in)
	s.record("investment", in, result)
	return result, nil
}

// Commercial runs the commercial underwriting screen.
func (s *Service) Commercial(in investment.CommercialInput) (investment.CommercialResult, error) {
	if err := checkMoney(in.PurchasePrice, in.DownPayment, in.GrossRentAnnual,
		in.OperatingExpenses, in.PropertyTaxes, in.Insurance, in.Maintenance); err != nil {
		return investment.CommercialResult{}, err
	}
	if err := checkRate(in.RatePct, in.VacancyPct); err != nil {
		return investment.CommercialResult{}, err
	}

	var result investment.CommercialResult
	if s.fromCache("commercial", in, &result) {
		return result, nil
	}
	result = investment.CommercialAnalysis(in)
	s.record("commercial", in, result)
	return result, nil
}

// MLIScore scores a project and returns its tier terms.
func (s *Service) MLIScore(in mliselect.PointsInput) (mliselect.Score, error) {
	if err := checkRate(in.AffordableUnitPct, in.EnergyImprovementPct,
		in.AccessibilityCommitments.PctAccessible, in.AccessibilityCommitments.PctUniversal); err != nil {
		return mliselect.Score{}, err
	}
	if err := checkFinite(in.AffordabilityYears, in.AccessibilityCommitments.RHFScore); err != nil {
		return mliselect.Score{}, err
	}

	var result mliselect.Score
	if s.fromCache("mli_score", in, &result) {
		return result, nil
	}
	result = mliselect.CalculateScore(in)
	s.record("mli_score", in, result)
	return result, nil
}

// MLIMaxLoanInput sizes an MLI Select loan by leverage and by DSCR.
// AmortYears of zero means "use the tier ceiling".
type MLIMaxLoanInput struct {
	IsNewConstruction bool    `json:"is_new_construction"`
	TotalPoints       int     `json:"total_points"`
	ValueOrCost       float64 `json:"value_or_cost"`
	NOIAnnual         float64 `json:"noi_annual"`
	RatePct           float64 `json:"rate_pct"`
	AmortYears        float64 `json:"amort_years"`
}

// MLIMaxLoanResult reports both sizing constraints; the binding loan is the
// lower of the two when both apply.
type MLIMaxLoanResult struct {
	Tier            mliselect.Tier `json:"tier"`
	Leverage        float64        `json:"leverage"`
	AmortYears      float64        `json:"amort_years"`
	MaxLoanLeverage float64        `json:"max_loan_leverage"`
	MaxLoanDSCR     float64        `json:"max_loan_dscr"`
	MaxLoan         float64        `json:"max_loan"`
}

// MLIMaxLoan sizes the maximum program loan for a project.
func (s *Service) MLIMaxLoan(in MLIMaxLoanInput) (MLIMaxLoanResult, error) {
	if err := checkMoney(in.ValueOrCost, in.NOIAnnual); err != nil {
		return MLIMaxLoanResult{}, err
	}
	if err := checkRate(in.RatePct); err != nil {
		return MLIMaxLoanResult{}, err
	}
	if err := checkFinite(in.AmortYears); err != nil {
		return MLIMaxLoanResult{}, err
	}

	var cached MLIMaxLoanResult
	if s.fromCache("mli_max_loan", in, &cached) {
		return cached, nil
	}

	tier := mliselect.TierFromPoints(in.TotalPoints)
	years := in.AmortYears
	if years == 0 {
		years = mliselect.MaxAmortYears(tier)
	}

	byLeverage := mliselect.MaxLoanFromValueOrCost(in.IsNewConstruction, tier, in.ValueOrCost)
	byDSCR := mliselect.MaxLoanAtMinDSCR(in.NOIAnnual, in.RatePct, years)

	maxLoan := byLeverage
	if byDSCR > 0 && (maxLoan == 0 || byDSCR < maxLoan) {
		maxLoan = byDSCR
	}

	result := MLIMaxLoanResult{
		Tier:            tier,
		Leverage:        mliselect.Leverage(in.IsNewConstruction, tier),
		AmortYears:      years,
		MaxLoanLeverage: byLeverage,
		MaxLoanDSCR:     byDSCR,
		MaxLoan:         maxLoan,
	}
	s.record("mli_max_loan", in, result)
	return result, nil
}

// ConstructionDraws generates a progressive draw schedule.
func (s *Service) ConstructionDraws(in construction.DrawInput) (construction.DrawResult, error) {
	if err := checkMoney(in.TotalProjectCost, in.LandValue); err != nil {
		return construction.DrawResult{}, err
	}
	if err := checkRate(in.InterestRatePct); err != nil {
		return construction.DrawResult{}, err
	}
	if err := checkFinite(in.DownPaymentFraction); err != nil {
		return construction.DrawResult{}, err
	}
	if in.PeriodMonths < 0 || in.PeriodMonths > MaxTermMonths {
		return construction.DrawResult{}, ErrTermRange
	}

	var result construction.DrawResult
	if s.fromCache("construction_draws", in, &result) {
		return result, nil
	}
	result = construction.GenerateDrawSchedule(in)
	s.record("construction_draws", in, result)
	return result, nil
}

// BuilderPrograms matches a project against the configured program catalog.
func (s *Service) BuilderPrograms(in construction.ProjectInput) (construction.MatchResult, error) {
	if err := checkMoney(in.ProjectCost, in.DownPayment); err != nil {
		return construction.MatchResult{}, err
	}
	if in.ConstructionMonths < 0 || in.ConstructionMonths > MaxTermMonths {
		return construction.MatchResult{}, ErrTermRange
	}

	var result construction.MatchResult
	if s.fromCache("builder_programs", in, &result) {
		return result, nil
	}
	result = construction.MatchPrograms(s.catalog, in)
	s.record("builder_programs", in, result)
	return result, nil
}

// Refinance runs the penalty and break-even analysis.
func (s *Service) Refinance(in construction.RefinanceInput) (construction.RefinanceResult, error) {
	if err := checkMoney(in.Balance, in.LegalFees, in.AppraisalFee, in.DischargeFee); err != nil {
		return construction.RefinanceResult{}, err
	}
	if err := checkRate(in.CurrentRatePct, in.NewRatePct); err != nil {
		return construction.RefinanceResult{}, err
	}
	if in.RemainingTermMonth <= 0 || in.RemainingTermMonth > MaxTermMonths {
		return construction.RefinanceResult{}, ErrTermRange
	}
	if in.NewAmortYears <= 0 || in.NewAmortYears > MaxAmortYears {
		return construction.RefinanceResult{}, ErrTermRange
	}

	var result construction.RefinanceResult
	if s.fromCache("refinance", in, &result) {
		return result, nil
	}
	result = construction.AnalyzeRefinance(in)
	s.record("refinance", in, result)
	return result, nil
}

// DebtConsolidation estimates the effect of rolling debts into the mortgage.
func (s *Service) DebtConsolidation(in affordability.ConsolidationInput) (affordability.ConsolidationResult, error) {
	if err := checkMoney(in.HomeValue, in.CurrentMortgage, in.TotalDebts,
		in.MonthlyDebtPayments, in.GrossAnnualIncome); err != nil {
		return affordability.ConsolidationResult{}, err
	}

	var result affordability.ConsolidationResult
	if s.fromCache("debt_consolidation", in, &result) {
		return result, nil
	}
	result = affordability.DebtConsolidation(in)
	s.record("debt_consolidation", in, result)
	return result, nil
}

// GetScenario retrieves a saved scenario.
func (s *Service) GetScenario(id int64) (*models.Scenario, error) {
	return s.repo.FindByID(id)
}

// ListScenarios retrieves recent saved scenarios, newest first.
func (s *Service) ListScenarios(limit int) ([]models.Scenario, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(limit)
}
