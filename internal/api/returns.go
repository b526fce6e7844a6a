package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"counterpos/m/domain"
)

// Return handlers

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.store.ListReturns(r.Context())
	if err != nil {
		h.logDegraded("listReturns", err)
		returns = []domain.ReturnWithSale{}
	}
	respondJSON(w, http.StatusOK, returns)
}

func (h *Handler) returnStats(w http.ResponseWriter, r *http.Request) {
	returns, err := h.store.ListReturns(r.Context())
	if err != nil {
		h.logDegraded("returnStats", err)
		returns = nil
	}
	respondJSON(w, http.StatusOK, domain.SummarizeReturns(returns))
}

type createReturnRequest struct {
	SaleID       string          `json:"sale_id" validate:"required"`
	Reason       string          `json:"reason" validate:"max=1000"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request) {
	var req createReturnRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	ret, err := h.store.CreateReturn(r.Context(), req.SaleID, req.Reason, req.RefundAmount)
	if err != nil {
		h.respondDomainError(w, "createReturn", req.SaleID, err)
		return
	}
	respondJSON(w, http.StatusCreated, ret)
}

func (h *Handler) approveReturn(w http.ResponseWriter, r *http.Request) {
	h.setReturnStatus(w, r, domain.ReturnApproved)
}

func (h *Handler) rejectReturn(w http.ResponseWriter, r *http.Request) {
	h.setReturnStatus(w, r, domain.ReturnRejected)
}

func (h *Handler) setReturnStatus(w http.ResponseWriter, r *http.Request, next domain.ReturnStatus) {
	id := chi.URLParam(r, "id")
	ret, err := h.store.SetReturnStatus(r.Context(), id, next)
	if err != nil {
		h.respondDomainError(w, "setReturnStatus", id, err)
		return
	}
	respondJSON(w, http.StatusOK, ret)
}
