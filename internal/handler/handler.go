package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/family-ledger/internal/middleware"
	"github.com/Dan9191/family-ledger/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type errorResponse struct {
	Error   string      `json:"error"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type fundsDetails struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	Balance     string `json:"balance"`
	Required    string `json:"required"`
	MaxAmount   string `json:"maxAmount,omitempty"`
}

type availabilityDetails struct {
	Number     int    `json:"number"`
	PayoutDate string `json:"payoutDate"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "family-ledger"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError maps service errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	entry := h.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})

	var (
		ve *service.ValidationError
		fe *service.InsufficientFundsError
		na *service.NotYetAvailableError
	)
	switch {
	case errors.As(err, &ve):
		entry.Warnf("Validation failed: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &fe):
		entry.Warnf("Insufficient funds: %v", err)
		d := fundsDetails{
			AccountID:   fe.AccountID,
			AccountName: fe.AccountName,
			Balance:     fe.Balance.StringFixed(2),
			Required:    fe.Required.StringFixed(2),
		}
		if fe.MaxAmount != nil {
			d.MaxAmount = fe.MaxAmount.StringFixed(2)
		}
		writeJSON(w, http.StatusConflict, errorResponse{Error: fe.Error(), Details: d})
	case errors.As(err, &na):
		entry.Warnf("Payout not available: %v", err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   na.Error(),
			Details: availabilityDetails{Number: na.Number, PayoutDate: na.PayoutDate.String()},
		})
	case errors.Is(err, service.ErrNotFound):
		entry.Warnf("Not found: %v", err)
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		entry.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// userID is always present behind AuthMiddleware.
func userID(r *http.Request) string {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return uid
}
