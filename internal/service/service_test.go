package service

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftmortgages/calcserv/internal/cache"
	"github.com/kraftmortgages/calcserv/internal/calc/affordability"
	"github.com/kraftmortgages/calcserv/internal/calc/construction"
	"github.com/kraftmortgages/calcserv/internal/repository"
)

func newTestService() (*Service, *repository.MemoryStore, *cache.Memory) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := repository.NewMemoryStore()
	mem := cache.NewMemory()
	return NewService(store, mem, log, construction.DefaultCatalog()), store, mem
}

func TestCalculatePayment_PersistsScenario(t *testing.T) {
	svc, store, _ := newTestService()

	result, err := svc.CalculatePayment(PaymentInput{Principal: 300000, RatePct: 5.0, AmortYears: 25})
	require.NoError(t, err)
	assert.InDelta(t, 1753.77, result.MonthlyPayment, 0.01)
	assert.Greater(t, result.TotalInterest, 0.0)

	scenarios, err := store.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "payment", scenarios[0].Calculator)
}

func TestCalculatePayment_RejectsNaN(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.CalculatePayment(PaymentInput{Principal: math.NaN(), RatePct: 5, AmortYears: 25})
	assert.ErrorIs(t, err, ErrNonFiniteInput)

	_, err = svc.CalculatePayment(PaymentInput{Principal: 300000, RatePct: math.Inf(1), AmortYears: 25})
	assert.ErrorIs(t, err, ErrNonFiniteInput)

	// rejected inputs are never persisted
	scenarios, err := store.ListRecent(10)
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}

func TestCalculatePayment_RejectsOutOfRange(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CalculatePayment(PaymentInput{Principal: 2e9, RatePct: 5, AmortYears: 25})
	assert.ErrorIs(t, err, ErrAmountRange)

	_, err = svc.CalculatePayment(PaymentInput{Principal: 300000, RatePct: 200, AmortYears: 25})
	assert.ErrorIs(t, err, ErrRateRange)

	_, err = svc.CalculatePayment(PaymentInput{Principal: 300000, RatePct: 5, AmortYears: 80})
	assert.ErrorIs(t, err, ErrTermRange)
}

func TestAffordability_RejectsFractionOutOfRange(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Affordability(affordability.Input{
		GrossAnnualIncome:   100000,
		DownPaymentFraction: 1.5,
		CreditScore:         700,
	})
	assert.ErrorIs(t, err, ErrAmountRange)
}

func TestMLIMaxLoan_DefaultsAmortToTierCeiling(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.MLIMaxLoan(MLIMaxLoanInput{
		IsNewConstruction: true,
		TotalPoints:       70,
		ValueOrCost:       10_000_000,
		NOIAnnual:         450_000,
		RatePct:           4.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 45.0, result.AmortYears)
	assert.InDelta(t, 9_500_000, result.MaxLoanLeverage, 0.01)

	// the binding constraint is the lower of the two sizings
	assert.Equal(t, math.Min(result.MaxLoanLeverage, result.MaxLoanDSCR), result.MaxLoan)
}

func TestBuilderPrograms_UsesConfiguredCatalog(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	catalog := []construction.Program{{
		Name: "Only", Lender: "L", MaxLTVPct: 90, InterestRatePct: 6, MaxLoanAmount: 1e7,
	}}
	svc := NewService(repository.NewMemoryStore(), cache.NewMemory(), log, catalog)

	result, err := svc.BuilderPrograms(construction.ProjectInput{
		ProjectCost: 1_000_000, DownPayment: 200_000, ConstructionMonths: 12,
	})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Only", result.Matches[0].Program.Name)
	assert.True(t, result.Matches[0].Eligible)
}

func TestRecord_CachesResult(t *testing.T) {
	svc, _, mem := newTestService()

	in := PaymentInput{Principal: 300000, RatePct: 5.0, AmortYears: 25}
	_, err := svc.CalculatePayment(in)
	require.NoError(t, err)

	inputJSON := []byte(`{"principal":300000,"rate_pct":5,"amort_years":25}`)
	cached, ok := mem.Get(cache.Key("payment", inputJSON))
	require.True(t, ok)
	assert.Contains(t, cached, "monthly_payment")
}

func TestCacheHit_SkipsRepersistence(t *testing.T) {
	svc, store, _ := newTestService()

	in := PaymentInput{Principal: 300000, RatePct: 5.0, AmortYears: 25}
	first, err := svc.CalculatePayment(in)
	require.NoError(t, err)

	second, err := svc.CalculatePayment(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the repeat was served from cache, no second scenario row
	scenarios, err := store.ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, scenarios, 1)
}

func TestListScenarios_ClampsLimit(t *testing.T) {
	svc, _, _ := newTestService()

	for range [3]struct{}{} {
		_, err := svc.CalculatePayment(PaymentInput{Principal: 100000, RatePct: 4, AmortYears: 20})
		require.NoError(t, err)
	}

	scenarios, err := svc.ListScenarios(-1)
	require.NoError(t, err)
	assert.Len(t, scenarios, 3)
}
