package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"counterpos/m/domain"
	"counterpos/m/internal/checkout"
	"counterpos/m/internal/config"
	"counterpos/m/internal/terminal"
)

// recentShown is how many recent products the billing screen shows by default.
const recentShown = 6

type cartResponse struct {
	Mode     domain.PricingMode `json:"pricing_mode"`
	Lines    []domain.CartLine  `json:"lines"`
	SubTotal decimal.Decimal    `json:"sub_total"`
	Items    int64              `json:"items"`
}

func newCartResponse(cart domain.Cart) cartResponse {
	resp := cartResponse{Mode: cart.Mode, Lines: cart.Lines, SubTotal: cart.SubTotal()}
	if resp.Lines == nil {
		resp.Lines = []domain.CartLine{}
	}
	for _, l := range cart.Lines {
		resp.Items += l.Quantity
	}
	return resp
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	state, err := h.terminals.Load(r.Context(), sessionID(r))
	if err != nil {
		h.respondDomainError(w, "getCart", sessionID(r), err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(state.Cart))
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// addCartItem adds one unit. Out-of-stock products and lines already at the
// stock level leave the cart unchanged; the response says whether it changed.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	product, err := h.store.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.respondDomainError(w, "addCartItem", req.ProductID, err)
		return
	}

	var added bool
	state, err := h.terminals.Update(r.Context(), sessionID(r), func(s *terminal.State) error {
		added = s.Cart.Add(product)
		if product.StockQuantity > 0 {
			s.TouchRecent(product.ID)
		}
		return nil
	})
	if err != nil {
		h.respondDomainError(w, "addCartItem", req.ProductID, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		cartResponse
		Added bool `json:"added"`
	}{newCartResponse(state.Cart), added})
}

type adjustCartItemRequest struct {
	Delta int64 `json:"delta" validate:"required"`
}

// adjustCartItem shifts a line's quantity. Results below one or above the
// product's live stock are refused and the line is left as it was.
func (h *Handler) adjustCartItem(w http.ResponseWriter, r *http.Request) {
	var req adjustCartItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	productID := chi.URLParam(r, "id")
	product, err := h.store.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondDomainError(w, "adjustCartItem", productID, err)
		return
	}

	state, err := h.terminals.Update(r.Context(), sessionID(r), func(s *terminal.State) error {
		current := int64(-1)
		for _, l := range s.Cart.Lines {
			if l.ProductID == productID {
				current = l.Quantity
			}
		}
		if current < 0 {
			return fmt.Errorf("product %s not in cart: %w", productID, domain.ErrNotFound)
		}
		if s.Cart.AdjustQuantity(productID, req.Delta, product.StockQuantity) {
			return nil
		}
		if current+req.Delta < 1 {
			return fmt.Errorf("quantity must stay at least 1: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("only %d in stock: %w", product.StockQuantity, domain.ErrInsufficientStock)
	})
	if err != nil {
		h.respondDomainError(w, "adjustCartItem", productID, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(state.Cart))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	state, err := h.terminals.Update(r.Context(), sessionID(r), func(s *terminal.State) error {
		if !s.Cart.Remove(productID) {
			return fmt.Errorf("product %s not in cart: %w", productID, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		h.respondDomainError(w, "removeCartItem", productID, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(state.Cart))
}

type pricingModeRequest struct {
	Mode domain.PricingMode `json:"mode" validate:"required,oneof=retail wholesale"`
}

// setPricingMode switches retail/wholesale pricing and empties the cart.
func (h *Handler) setPricingMode(w http.ResponseWriter, r *http.Request) {
	var req pricingModeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	state, err := h.terminals.Update(r.Context(), sessionID(r), func(s *terminal.State) error {
		s.Cart.SetPricingMode(req.Mode)
		return nil
	})
	if err != nil {
		h.respondDomainError(w, "setPricingMode", req.Mode, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(state.Cart))
}

// recentProducts resolves the terminal's recent product ids, skipping
// products deleted since.
func (h *Handler) recentProducts(w http.ResponseWriter, r *http.Request) {
	limit := recentShown
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > terminal.RecentLimit {
		limit = terminal.RecentLimit
	}

	products := []domain.Product{}
	state, err := h.terminals.Load(r.Context(), sessionID(r))
	if err != nil {
		h.logDegraded("recentProducts", err)
		respondJSON(w, http.StatusOK, products)
		return
	}
	for _, id := range state.Recent {
		if len(products) == limit {
			break
		}
		p, err := h.store.GetProduct(r.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			h.logDegraded("recentProducts", err)
			break
		}
		products = append(products, p)
	}
	respondJSON(w, http.StatusOK, products)
}

// Checkout handlers

type checkoutRequest struct {
	CustomerName  string               `json:"customer_name" validate:"max=255"`
	CustomerID    string               `json:"customer_id"`
	Discount      decimal.Decimal      `json:"discount"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=CASH CARD UPI"`
}

// checkoutCart commits the terminal's cart as a sale and clears it. The
// Idempotency-Key header makes a retried submission return the first sale.
func (h *Handler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Discount.IsNegative() {
		respondError(w, http.StatusBadRequest, "discount cannot be negative")
		return
	}

	var (
		rec       domain.Receipt
		committed bool
	)
	sid := sessionID(r)
	_, err := h.terminals.Update(r.Context(), sid, func(s *terminal.State) error {
		var err error
		rec, err = h.checkout.Checkout(r.Context(), s.Cart, checkout.Request{
			CustomerName:   req.CustomerName,
			CustomerID:     req.CustomerID,
			Discount:       req.Discount,
			PaymentMethod:  req.PaymentMethod,
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		if err != nil {
			return err
		}
		committed = true
		s.Cart.Clear()
		return nil
	})
	if err != nil && !committed {
		h.respondDomainError(w, "checkoutCart", sid, err)
		return
	}
	if err != nil {
		// The sale is recorded; only the cart reset was lost.
		config.LogError(h.logger, moduleName, "checkoutCart", "sale recorded but terminal state not saved", rec.SaleID, err)
		if _, err := h.terminals.Update(r.Context(), sid, func(s *terminal.State) error {
			s.Cart.Clear()
			return nil
		}); err != nil {
			config.LogError(h.logger, moduleName, "checkoutCart", "unable to clear cart after sale", rec.SaleID, err)
		}
	}

	status := http.StatusCreated
	if rec.Replayed {
		status = http.StatusOK
	}
	h.logger.WithFields(logrus.Fields{
		"sale_id":    rec.SaleID,
		"display_id": rec.DisplayID,
		"replayed":   rec.Replayed,
	}).Info("sale recorded")
	respondJSON(w, status, rec)
}

// saleReceipt serves the printable HTML receipt, or JSON with ?format=json.
func (h *Handler) saleReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.checkout.ReceiptFor(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, "saleReceipt", id, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		respondJSON(w, http.StatusOK, rec)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.receipts.Render(w, rec); err != nil {
		h.logDegraded("saleReceipt", err)
	}
}
