package handler

import (
	"net/http"
	"strconv"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/repository"
	"github.com/Dan9191/family-ledger/internal/service"
	"github.com/gorilla/mux"
)

// ListTransactions supports ?accountId=&type=&limit=&startAfter=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.TransactionFilter{
		AccountID:  q.Get("accountId"),
		Type:       models.TransactionType(q.Get("type")),
		StartAfter: q.Get("startAfter"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			h.badRequest(w, "limit must be a non-negative integer")
			return
		}
		f.Limit = limit
	}

	txs, err := h.svc.ListTransactions(r.Context(), userID(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.TransactionInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	tx, err := h.svc.CreateTransaction(r.Context(), userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.GetTransaction(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.TransactionInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	tx, err := h.svc.EditTransaction(r.Context(), userID(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories lists the selectable categories per transaction type
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		string(models.Income):  models.IncomeCategories,
		string(models.Expense): models.ExpenseCategories,
	})
}
