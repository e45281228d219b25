package handler

import (
	"fmt"
	"net/http"

	"github.com/Dan9191/family-ledger/internal/export"
	"github.com/Dan9191/family-ledger/internal/service"
	"github.com/gorilla/mux"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAccountInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	account, err := h.svc.CreateAccount(r.Context(), userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.GetAccount(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateAccountInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	account, err := h.svc.UpdateAccount(r.Context(), userID(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatementXML streams the account statement as XML
func (h *Handler) StatementXML(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Statement(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"statement_%s.xml\"", st.GeneratedOn))
	if err := export.WriteXML(w, st); err != nil {
		h.log.Errorf("Failed to write XML statement: %v", err)
	}
}

// StatementXLSX streams the account statement as a workbook
func (h *Handler) StatementXLSX(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Statement(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"statement_%s.xlsx\"", st.GeneratedOn))
	if err := export.WriteXLSX(w, st); err != nil {
		h.log.Errorf("Failed to write XLSX statement: %v", err)
	}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
