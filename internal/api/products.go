package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"counterpos/m/domain"
	"counterpos/m/internal/store"
)

// Product handlers

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{
		Query:    r.URL.Query().Get("query"),
		Category: r.URL.Query().Get("category"),
	}
	products, err := h.store.ListProducts(r.Context(), filter)
	if err != nil {
		h.logDegraded("listProducts", err)
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.Categories(r.Context())
	if err != nil {
		h.logDegraded("listCategories", err)
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, "getProduct", chi.URLParam(r, "id"), err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.LowStock(r.Context())
	if err != nil {
		h.logDegraded("lowStock", err)
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

type createProductRequest struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Category       string           `json:"category" validate:"max=100"`
	Price          decimal.Decimal  `json:"price"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	CostPrice      *decimal.Decimal `json:"cost_price"`
	StockQuantity  int64            `json:"stock_quantity" validate:"gte=0"`
}

func optionalPrice(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "price must be greater than zero")
		return
	}
	if (req.WholesalePrice != nil && req.WholesalePrice.IsNegative()) || (req.CostPrice != nil && req.CostPrice.IsNegative()) {
		respondError(w, http.StatusBadRequest, "wholesale_price and cost_price cannot be negative")
		return
	}

	product, err := h.store.CreateProduct(r.Context(), domain.Product{
		Name:           req.Name,
		Category:       req.Category,
		Price:          req.Price,
		WholesalePrice: optionalPrice(req.WholesalePrice),
		CostPrice:      optionalPrice(req.CostPrice),
		StockQuantity:  req.StockQuantity,
	})
	if err != nil {
		h.respondDomainError(w, "createProduct", req.Name, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// nullablePrice tells an omitted field apart from an explicit null, which
// clears the stored price.
type nullablePrice struct {
	set   bool
	value decimal.NullDecimal
}

func (p *nullablePrice) UnmarshalJSON(raw []byte) error {
	p.set = true
	return p.value.UnmarshalJSON(raw)
}

func (p nullablePrice) patch() *decimal.NullDecimal {
	if !p.set {
		return nil
	}
	value := p.value
	return &value
}

type updateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=255"`
	Category       *string          `json:"category" validate:"omitempty,max=100"`
	Price          *decimal.Decimal `json:"price"`
	WholesalePrice nullablePrice    `json:"wholesale_price"`
	CostPrice      nullablePrice    `json:"cost_price"`
	StockQuantity  *int64           `json:"stock_quantity" validate:"omitempty,gte=0"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	product, err := h.store.UpdateProduct(r.Context(), chi.URLParam(r, "id"), domain.ProductPatch{
		Name:           req.Name,
		Category:       req.Category,
		Price:          req.Price,
		WholesalePrice: req.WholesalePrice.patch(),
		CostPrice:      req.CostPrice.patch(),
		StockQuantity:  req.StockQuantity,
	})
	if err != nil {
		h.respondDomainError(w, "updateProduct", chi.URLParam(r, "id"), err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// deleteProduct needs ?confirm=true; deletion cannot be undone.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.URL.Query().Get("confirm"), "true") {
		respondError(w, http.StatusBadRequest, "deleting a product requires confirm=true")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		h.respondDomainError(w, "deleteProduct", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stock purchase handlers

type stockPurchaseRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Supplier  string          `json:"supplier" validate:"max=255"`
	Notes     string          `json:"notes"`
}

func (h *Handler) recordStockPurchase(w http.ResponseWriter, r *http.Request) {
	var req stockPurchaseRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.UnitCost.IsNegative() {
		respondError(w, http.StatusBadRequest, "unit_cost cannot be negative")
		return
	}
	purchase, err := h.store.RecordStockPurchase(r.Context(), domain.StockPurchase{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		Supplier:  nullIfEmpty(req.Supplier),
		Notes:     nullIfEmpty(req.Notes),
	})
	if err != nil {
		h.respondDomainError(w, "recordStockPurchase", req.ProductID, err)
		return
	}
	respondJSON(w, http.StatusCreated, purchase)
}

func (h *Handler) listStockPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.store.ListStockPurchases(r.Context(), r.URL.Query().Get("product_id"))
	if err != nil {
		h.logDegraded("listStockPurchases", err)
		purchases = []domain.StockPurchase{}
	}
	respondJSON(w, http.StatusOK, purchases)
}

func nullIfEmpty(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}
