package handler

import (
	"context"
	"net/http"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/Dan9191/family-ledger/internal/schedule"
	"github.com/Dan9191/family-ledger/internal/service"
	"github.com/gorilla/mux"
)

// DebtView is a debt with its derived summary
type DebtView struct {
	models.Debt
	Summary schedule.DebtSummary `json:"summary"`
}

type PaluwaganView struct {
	models.Paluwagan
	Summary schedule.PaluwaganSummary `json:"summary"`
}

func (h *Handler) debtView(d *models.Debt) DebtView {
	return DebtView{Debt: *d, Summary: schedule.SummarizeDebt(d, h.svc.Today())}
}

func (h *Handler) paluwaganView(p *models.Paluwagan) PaluwaganView {
	return PaluwaganView{Paluwagan: *p, Summary: schedule.SummarizePaluwagan(p, h.svc.Today())}
}

func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.svc.ListDebts(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views := make([]DebtView, 0, len(debts))
	for i := range debts {
		views = append(views, h.debtView(&debts[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var in service.CreateDebtInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	debt, err := h.svc.CreateDebt(r.Context(), userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.debtView(debt))
}

func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := h.svc.GetDebt(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.debtView(debt))
}

func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateDebtInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	debt, err := h.svc.UpdateDebt(r.Context(), userID(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.debtView(debt))
}

func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDebt(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	var in service.SettleInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	debt, err := h.svc.SettleDebt(r.Context(), userID(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.debtView(debt))
}

func (h *Handler) UnmarkDebt(w http.ResponseWriter, r *http.Request) {
	var in service.UnmarkInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	debt, err := h.svc.UnmarkDebt(r.Context(), userID(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.debtView(debt))
}

func (h *Handler) ListPaluwagans(w http.ResponseWriter, r *http.Request) {
	pools, err := h.svc.ListPaluwagans(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views := make([]PaluwaganView, 0, len(pools))
	for i := range pools {
		views = append(views, h.paluwaganView(&pools[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) CreatePaluwagan(w http.ResponseWriter, r *http.Request) {
	var in service.PaluwaganInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	p, err := h.svc.CreatePaluwagan(r.Context(), userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.paluwaganView(p))
}

func (h *Handler) GetPaluwagan(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPaluwagan(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.paluwaganView(p))
}

func (h *Handler) UpdatePaluwagan(w http.ResponseWriter, r *http.Request) {
	var in service.PaluwaganInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	p, err := h.svc.UpdatePaluwagan(r.Context(), userID(r), mux.Vars(r)["id"], in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.paluwaganView(p))
}

func (h *Handler) DeletePaluwagan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePaluwagan(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settleFunc func(ctx context.Context, uid, id string, in service.SettleInput) (*models.Paluwagan, error)

type unmarkFunc func(ctx context.Context, uid, id string, in service.UnmarkInput) (*models.Paluwagan, error)

// settlePaluwagan adapts SettleWeeks and SettlePayouts to HTTP.
func (h *Handler) settlePaluwagan(fn settleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.SettleInput
		if err := decode(r, &in); err != nil {
			h.badRequest(w, "invalid request body")
			return
		}
		p, err := fn(r.Context(), userID(r), mux.Vars(r)["id"], in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.paluwaganView(p))
	}
}

func (h *Handler) unmarkPaluwagan(fn unmarkFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.UnmarkInput
		if err := decode(r, &in); err != nil {
			h.badRequest(w, "invalid request body")
			return
		}
		p, err := fn(r.Context(), userID(r), mux.Vars(r)["id"], in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.paluwaganView(p))
	}
}
