package handler

import (
	"github.com/gorilla/mux"
)

// Routes builds the HTTP router. Middleware is applied by the caller so
// tests can exercise the bare routes.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()

	calc := r.PathPrefix("/calculate").Subrouter()
	calc.HandleFunc("/payment", h.Payment).Methods("POST")
	calc.HandleFunc("/schedule", h.Schedule).Methods("POST")
	calc.HandleFunc("/affordability", h.Affordability).Methods("POST")
	calc.HandleFunc("/investment", h.Investment).Methods("POST")
	calc.HandleFunc("/commercial", h.Commercial).Methods("POST")
	calc.HandleFunc("/mli-select/score", h.MLIScore).Methods("POST")
	calc.HandleFunc("/mli-select/max-loan", h.MLIMaxLoan).Methods("POST")
	calc.HandleFunc("/construction/draws", h.ConstructionDraws).Methods("POST")
	calc.HandleFunc("/construction/programs", h.BuilderPrograms).Methods("POST")
	calc.HandleFunc("/refinance", h.Refinance).Methods("POST")
	calc.HandleFunc("/debt-consolidation", h.DebtConsolidation).Methods("POST")

	r.HandleFunc("/scenarios", h.ListScenarios).Methods("GET")
	r.HandleFunc("/scenarios/{id:[0-9]+}", h.GetScenario).Methods("GET")
	r.HandleFunc("/scenarios/{id:[0-9]+}/export", h.ExportScenario).Methods("GET")

	r.HandleFunc("/rates/posted", h.PostedRate).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")

	return r
}
