package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"counterpos/m/domain"
	"counterpos/m/internal/reports"
)

const dateParamLayout = "2006-01-02"

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSalesWithItems(r.Context())
	if err != nil {
		h.logDegraded("listSales", err)
		sales = []domain.SaleWithItems{}
	}
	respondJSON(w, http.StatusOK, sales)
}

// parseDateParam reads a YYYY-MM-DD or RFC3339 query value. Plain dates are
// store-local; endOfDay moves them to the last instant of that day.
func (h *Handler) parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateParamLayout, raw, h.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	from, err := h.parseDateParam(r.URL.Query().Get("start_date"), false)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := h.parseDateParam(r.URL.Query().Get("end_date"), true)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.reporter.SalesSummary(r.Context(), from, to)
	if err != nil {
		h.logDegraded("salesSummary", err)
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) attachment(w http.ResponseWriter, contentType, prefix, ext string) {
	name := fmt.Sprintf("%s-%s.%s", prefix, h.now().In(h.cfg.Location).Format(dateParamLayout), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func (h *Handler) exportSalesCSV(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSalesWithItems(r.Context())
	if err != nil {
		h.respondDomainError(w, "exportSalesCSV", nil, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteSalesCSV(&buf, sales, h.cfg.Location); err != nil {
		h.respondDomainError(w, "exportSalesCSV", nil, err)
		return
	}
	h.attachment(w, "text/csv; charset=utf-8", "sales-report", "csv")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) exportSalesXLSX(w http.ResponseWriter, r *http.Request) {
	sales, err := h.store.ListSalesWithItems(r.Context())
	if err != nil {
		h.respondDomainError(w, "exportSalesXLSX", nil, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteSalesXLSX(&buf, sales, h.cfg.Location); err != nil {
		h.respondDomainError(w, "exportSalesXLSX", nil, err)
		return
	}
	h.attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "sales-report", "xlsx")
	_, _ = w.Write(buf.Bytes())
}
