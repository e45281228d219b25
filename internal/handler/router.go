package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every route. auth guards everything except /health.
func NewRouter(h *Handler, auth mux.MiddlewareFunc, mw ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	for _, m := range mw {
		r.Use(m)
	}

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Protected routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth)

	api.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/categories", h.Categories).Methods(http.MethodGet)

	api.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts", h.CreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}", h.GetAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods(http.MethodPut)
	api.HandleFunc("/accounts/{id}", h.DeleteAccount).Methods(http.MethodDelete)
	api.HandleFunc("/accounts/{id}/statement.xml", h.StatementXML).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}/statement.xlsx", h.StatementXLSX).Methods(http.MethodGet)

	api.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", h.GetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", h.EditTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/debts", h.ListDebts).Methods(http.MethodGet)
	api.HandleFunc("/debts", h.CreateDebt).Methods(http.MethodPost)
	api.HandleFunc("/debts/{id}", h.GetDebt).Methods(http.MethodGet)
	api.HandleFunc("/debts/{id}", h.UpdateDebt).Methods(http.MethodPut)
	api.HandleFunc("/debts/{id}", h.DeleteDebt).Methods(http.MethodDelete)
	api.HandleFunc("/debts/{id}/settle", h.SettleDebt).Methods(http.MethodPost)
	api.HandleFunc("/debts/{id}/unmark", h.UnmarkDebt).Methods(http.MethodPost)

	api.HandleFunc("/paluwagans", h.ListPaluwagans).Methods(http.MethodGet)
	api.HandleFunc("/paluwagans", h.CreatePaluwagan).Methods(http.MethodPost)
	api.HandleFunc("/paluwagans/{id}", h.GetPaluwagan).Methods(http.MethodGet)
	api.HandleFunc("/paluwagans/{id}", h.UpdatePaluwagan).Methods(http.MethodPut)
	api.HandleFunc("/paluwagans/{id}", h.DeletePaluwagan).Methods(http.MethodDelete)
	api.HandleFunc("/paluwagans/{id}/weeks/settle", h.settlePaluwagan(h.svc.SettleWeeks)).Methods(http.MethodPost)
	api.HandleFunc("/paluwagans/{id}/weeks/unmark", h.unmarkPaluwagan(h.svc.UnmarkWeeks)).Methods(http.MethodPost)
	api.HandleFunc("/paluwagans/{id}/payouts/settle", h.settlePaluwagan(h.svc.SettlePayouts)).Methods(http.MethodPost)
	api.HandleFunc("/paluwagans/{id}/payouts/unmark", h.unmarkPaluwagan(h.svc.UnmarkPayouts)).Methods(http.MethodPost)

	return r
}
