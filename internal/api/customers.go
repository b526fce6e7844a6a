package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"counterpos/m/domain"
	"counterpos/m/internal/store"
)

// Customer handlers

// listCustomers lists everyone by name, or with ?query= returns up to ten
// name/phone matches for the counter lookup.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	var (
		customers []domain.Customer
		err       error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("query")); q != "" {
		customers, err = h.store.SearchCustomers(r.Context(), q)
	} else {
		customers, err = h.store.ListCustomers(r.Context())
	}
	if err != nil {
		h.logDegraded("listCustomers", err)
		customers = []domain.Customer{}
	}
	respondJSON(w, http.StatusOK, customers)
}

type createCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	customer, err := h.store.CreateCustomer(r.Context(), store.NewCustomer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		h.respondDomainError(w, "createCustomer", req.Name, err)
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteCustomer(r.Context(), id); err != nil {
		h.respondDomainError(w, "deleteCustomer", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
