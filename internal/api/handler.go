package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"counterpos/m/domain"
	"counterpos/m/internal/checkout"
	"counterpos/m/internal/config"
	"counterpos/m/internal/receipt"
	"counterpos/m/internal/reports"
	"counterpos/m/internal/store"
	"counterpos/m/internal/terminal"
)

const moduleName = "api"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	reporter  reports.Reporter
	terminals terminal.Store
	checkout  *checkout.Service
	receipts  *receipt.Renderer
	cfg       config.Config
	logger    *logrus.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// New constructs a Handler.
func New(cfg config.Config, st *store.Store, terminals terminal.Store, logger *logrus.Logger) *Handler {
	return &Handler{
		store:     st,
		reporter:  reports.NewScanReporter(st, cfg.Location),
		terminals: terminals,
		checkout:  checkout.NewService(st, cfg.Location),
		receipts:  receipt.NewRenderer(cfg.Profile, cfg.Location),
		cfg:       cfg,
		logger:    logger,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/unlock", h.unlock)
		r.Post("/admin", h.adminLogin)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/logout", h.logout)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		// Billing counter.
		pr.Group(func(r chi.Router) {
			r.Use(h.requireRole(domain.RoleOperator))

			r.Get("/products", h.listProducts)
			r.Get("/products/categories", h.listCategories)
			r.Get("/products/{id}", h.getProduct)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Post("/items", h.addCartItem)
				r.Patch("/items/{id}", h.adjustCartItem)
				r.Delete("/items/{id}", h.removeCartItem)
				r.Put("/pricing-mode", h.setPricingMode)
				r.Get("/recent", h.recentProducts)
			})

			r.Post("/checkout", h.checkoutCart)
			r.Get("/sales/{id}/receipt", h.saleReceipt)
			r.Get("/customers", h.listCustomers)
		})

		// Back office.
		pr.Group(func(r chi.Router) {
			r.Use(h.requireRole(domain.RoleAdmin))

			r.Post("/products", h.createProduct)
			r.Patch("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
			r.Get("/products/low-stock", h.lowStock)

			r.Route("/stock-purchases", func(r chi.Router) {
				r.Post("/", h.recordStockPurchase)
				r.Get("/", h.listStockPurchases)
			})

			r.Get("/sales", h.listSales)
			r.Get("/sales/summary", h.salesSummary)
			r.Get("/sales/export.csv", h.exportSalesCSV)
			r.Get("/sales/export.xlsx", h.exportSalesXLSX)

			r.Route("/returns", func(r chi.Router) {
				r.Get("/", h.listReturns)
				r.Post("/", h.createReturn)
				r.Get("/stats", h.returnStats)
				r.Post("/{id}/approve", h.approveReturn)
				r.Post("/{id}/reject", h.rejectReturn)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", h.dashboard)
				r.Get("/trend", h.salesTrend)
				r.Get("/categories", h.categoryStats)
				r.Get("/profit", h.profitStats)
				r.Get("/daily-summary.txt", h.dailySummary)
			})
			r.Get("/backup", h.backup)

			r.Post("/customers", h.createCustomer)
			r.Delete("/customers/{id}", h.deleteCustomer)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		config.LogError(h.logger, moduleName, "health", "database ping failed", nil, err)
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrSessionRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes err with its mapped status. Unexpected errors are
// logged and reported without internal detail.
func (h *Handler) respondDomainError(w http.ResponseWriter, funcName string, data any, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		config.LogError(h.logger, moduleName, funcName, "request failed", data, err)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

// logDegraded records a failed read that is answered with an empty result.
func (h *Handler) logDegraded(funcName string, err error) {
	config.LogError(h.logger, moduleName, funcName, "read failed, serving empty result", nil, err)
}

// decodeAndValidate decodes the body into dest and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := decodeJSON(r, dest); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "validation failed",
				"fields": processValidationErrors(verrs),
			})
			return false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func processValidationErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		fields[ve.Field()] = ve.Tag()
	}
	return fields
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
