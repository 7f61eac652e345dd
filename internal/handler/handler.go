package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kraftmortgages/calcserv/internal/calc/affordability"
	"github.com/kraftmortgages/calcserv/internal/calc/construction"
	"github.com/kraftmortgages/calcserv/internal/calc/investment"
	"github.com/kraftmortgages/calcserv/internal/calc/mliselect"
	"github.com/kraftmortgages/calcserv/internal/export"
	"github.com/kraftmortgages/calcserv/internal/models"
	"github.com/kraftmortgages/calcserv/internal/repository"
	"github.com/kraftmortgages/calcserv/internal/service"
)

// RateSource provides the current posted qualifying rate.
type RateSource interface {
	PostedRate() models.PostedRate
}

type Handler struct {
	svc   *service.Service
	rates RateSource
	log   *logrus.Logger
}

func NewHandler(svc *service.Service, rates RateSource, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, rates: rates, log: log}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, errorResponse{Error: msg})
}

// isValidationError distinguishes bad requests from internal failures.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrNonFiniteInput) ||
		errors.Is(err, service.ErrAmountRange) ||
		errors.Is(err, service.ErrRateRange) ||
		errors.Is(err, service.ErrTermRange)
}

// handleCalc decodes the request body, runs calc and writes the result.
// All calculator endpoints share this shape.
func handleCalc[In, Out any](h *Handler, w http.ResponseWriter, r *http.Request, calc func(In) (Out, error)) {
	var in In
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := calc(in)
	if err != nil {
		if isValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Errorf("calculation failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "calculation failed")
		return
	}

	h.respondJSON(w, http.StatusOK, out)
}

// Payment handles amortized payment calculation
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, h.svc.CalculatePayment)
}

// Schedule handles full amortization schedule generation
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, h.svc.AmortizationSchedule)
}

// Affordability handles pre-approval qualification
func (h *Handler) Affordability(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in affordability.Input) (affordability.Result, error) {
		return h.svc.Affordability(in)
	})
}

// Investment handles residential cash flow analysis
func (h *Handler) Investment(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in investment.Input) (investment.CashflowResult, error) {
		return h.svc.Investment(in)
	})
}

// Commercial handles commercial underwriting analysis
func (h *Handler) Commercial(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in investment.CommercialInput) (investment.CommercialResult, error) {
		return h.svc.Commercial(in)
	})
}

// MLIScore handles MLI Select point scoring
func (h *Handler) MLIScore(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in mliselect.PointsInput) (mliselect.Score, error) {
		return h.svc.MLIScore(in)
	})
}

// MLIMaxLoan handles MLI Select loan sizing
func (h *Handler) MLIMaxLoan(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, h.svc.MLIMaxLoan)
}

// ConstructionDraws handles draw schedule generation
func (h *Handler) ConstructionDraws(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in construction.DrawInput) (construction.DrawResult, error) {
		return h.svc.ConstructionDraws(in)
	})
}

// BuilderPrograms handles builder program matching
func (h *Handler) BuilderPrograms(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in construction.ProjectInput) (construction.MatchResult, error) {
		return h.svc.BuilderPrograms(in)
	})
}

// Refinance handles penalty and break-even analysis
func (h *Handler) Refinance(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in construction.RefinanceInput) (construction.RefinanceResult, error) {
		return h.svc.Refinance(in)
	})
}

// DebtConsolidation handles debt consolidation analysis
func (h *Handler) DebtConsolidation(w http.ResponseWriter, r *http.Request) {
	handleCalc(h, w, r, func(in affordability.ConsolidationInput) (affordability.ConsolidationResult, error) {
		return h.svc.DebtConsolidation(in)
	})
}

// ListScenarios returns recently saved scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	scenarios, err := h.svc.ListScenarios(limit)
	if err != nil {
		h.log.Errorf("failed to list scenarios: %v", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list scenarios")
		return
	}

	h.respondJSON(w, http.StatusOK, scenarios)
}

// GetScenario returns one saved scenario by id
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	scenario, err := h.svc.GetScenario(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		h.log.Errorf("failed to load scenario %d: %v", id, err)
		h.respondError(w, http.StatusInternalServerError, "failed to load scenario")
		return
	}

	h.respondJSON(w, http.StatusOK, scenario)
}

// ExportScenario returns one saved scenario as a JSON or CSV download
func (h *Handler) ExportScenario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	scenario, err := h.svc.GetScenario(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		h.log.Errorf("failed to load scenario %d: %v", id, err)
		h.respondError(w, http.StatusInternalServerError, "failed to load scenario")
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		data, err := export.ScenarioJSON(*scenario)
		if err != nil {
			h.log.Errorf("failed to export scenario %d: %v", id, err)
			h.respondError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename=scenario-"+strconv.FormatInt(id, 10)+".json")
		w.Write(data)
	case "csv":
		data, err := export.ScenarioCSV(*scenario)
		if err != nil {
			h.log.Errorf("failed to export scenario %d: %v", id, err)
			h.respondError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=scenario-"+strconv.FormatInt(id, 10)+".csv")
		w.Write([]byte(data))
	default:
		h.respondError(w, http.StatusBadRequest, "unsupported format: "+format)
	}
}

// PostedRate returns the current posted qualifying rate
func (h *Handler) PostedRate(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.rates.PostedRate())
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
