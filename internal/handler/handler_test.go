package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraftmortgages/calcserv/internal/cache"
	"github.com/kraftmortgages/calcserv/internal/calc/construction"
	"github.com/kraftmortgages/calcserv/internal/models"
	"github.com/kraftmortgages/calcserv/internal/repository"
	"github.com/kraftmortgages/calcserv/internal/service"
)

type staticRates struct{}

func (staticRates) PostedRate() models.PostedRate {
	return models.PostedRate{RatePct: 6.49, RetrievedAt: time.Now()}
}

func newTestHandler() (*Handler, *repository.MemoryStore) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := repository.NewMemoryStore()
	svc := service.NewService(store, cache.NewMemory(), log, construction.DefaultCatalog())
	return NewHandler(svc, staticRates{}, log), store
}

func postJSON(t *testing.T, h *Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestPayment(t *testing.T) {
	h, _ := newTestHandler()

	rec := postJSON(t, h, "/calculate/payment", map[string]any{
		"principal":   100000,
		"rate_pct":    5.0,
		"amort_years": 25,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		MonthlyPayment float64 `json:"monthly_payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 584.59, result.MonthlyPayment, 0.01)
}

func TestPayment_RejectsBadInput(t *testing.T) {
	h, _ := newTestHandler()

	rec := postJSON(t, h, "/calculate/payment", map[string]any{
		"principal":   -5,
		"rate_pct":    5.0,
		"amort_years": 25,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestPayment_RejectsMalformedJSON(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/calculate/payment", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAffordability(t *testing.T) {
	h, _ := newTestHandler()

	rec := postJSON(t, h, "/calculate/affordability", map[string]any{
		"gross_annual_income":   120000,
		"monthly_debts":         300,
		"down_payment_fraction": 0.10,
		"credit_score":          740,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		MaxPurchasePrice float64 `json:"max_purchase_price"`
		Qualifies        bool    `json:"qualifies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Qualifies)
	assert.Greater(t, result.MaxPurchasePrice, 0.0)
}

func TestMLIScore(t *testing.T) {
	h, _ := newTestHandler()

	rec := postJSON(t, h, "/calculate/mli-select/score", map[string]any{
		"is_new_construction":    true,
		"affordable_unit_pct":    15,
		"affordability_years":    10,
		"energy_improvement_pct": 25,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		TotalPoints int `json:"total_points"`
		Tier        int `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 105, result.TotalPoints)
	assert.Equal(t, 3, result.Tier)
}

func TestConstructionDraws(t *testing.T) {
	h, _ := newTestHandler()

	rec := postJSON(t, h, "/calculate/construction/draws", map[string]any{
		"total_project_cost":    800000,
		"land_value":            200000,
		"down_payment_fraction": 0.25,
		"interest_rate_pct":     7.0,
		"period_months":         12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result construction.DrawResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Schedule, 9)
	assert.True(t, result.Qualifies)
}

func TestScenarioLifecycle(t *testing.T) {
	h, store := newTestHandler()

	rec := postJSON(t, h, "/calculate/payment", map[string]any{
		"principal":   250000,
		"rate_pct":    4.5,
		"amort_years": 25,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// the calculation was persisted
	scenarios, err := store.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	id := scenarios[0].ID

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scenarios/%d", id), nil)
	getRec := httptest.NewRecorder()
	h.Routes().ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)

	var loaded models.Scenario
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &loaded))
	assert.Equal(t, "payment", loaded.Calculator)

	listReq := httptest.NewRequest(http.MethodGet, "/scenarios", nil)
	listRec := httptest.NewRecorder()
	h.Routes().ServeHTTP(listRec, listReq)
	assert.Equal(t, http.StatusOK, listRec.Code)
}

func TestGetScenario_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/scenarios/999", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportScenario_CSV(t *testing.T) {
	h, store := newTestHandler()

	rec := postJSON(t, h, "/calculate/payment", map[string]any{
		"principal":   250000,
		"rate_pct":    4.5,
		"amort_years": 25,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	scenarios, err := store.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scenarios/%d/export?format=csv", scenarios[0].ID), nil)
	expRec := httptest.NewRecorder()
	h.Routes().ServeHTTP(expRec, req)
	require.Equal(t, http.StatusOK, expRec.Code)
	assert.Equal(t, "text/csv", expRec.Header().Get("Content-Type"))
	assert.Contains(t, expRec.Body.String(), "input.principal")
}

func TestExportScenario_UnsupportedFormat(t *testing.T) {
	h, store := newTestHandler()

	postJSON(t, h, "/calculate/payment", map[string]any{
		"principal":   250000,
		"rate_pct":    4.5,
		"amort_years": 25,
	})
	scenarios, err := store.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scenarios/%d/export?format=xml", scenarios[0].ID), nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostedRate(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/rates/posted", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var rate models.PostedRate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rate))
	assert.Equal(t, 6.49, rate.RatePct)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
