package api

import (
	"bytes"
	"net/http"
	"strconv"

	"counterpos/m/internal/reports"
)

// Dashboard handlers. Failed reads are logged and answered with zero figures.

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporter.Dashboard(r.Context())
	if err != nil {
		h.logDegraded("dashboard", err)
		stats = reports.EmptyDashboard()
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) salesTrend(w http.ResponseWriter, r *http.Request) {
	days := reports.DefaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = reports.ClampTrendDays(n)
	}
	trend, err := h.reporter.SalesTrend(r.Context(), days)
	if err != nil {
		h.logDegraded("salesTrend", err)
	}
	respondJSON(w, http.StatusOK, trend)
}

func (h *Handler) categoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporter.Categories(r.Context())
	if err != nil {
		h.logDegraded("categoryStats", err)
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) profitStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporter.Profit(r.Context())
	if err != nil {
		h.logDegraded("profitStats", err)
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporter.Dashboard(r.Context())
	if err != nil {
		h.logDegraded("dailySummary", err)
		stats = reports.EmptyDashboard()
	}
	var buf bytes.Buffer
	if err := reports.WriteDailySummary(&buf, h.cfg.Profile.Name, stats, h.now().In(h.cfg.Location)); err != nil {
		h.respondDomainError(w, "dailySummary", nil, err)
		return
	}
	h.attachment(w, "text/plain; charset=utf-8", "daily-summary", "txt")
	_, _ = w.Write(buf.Bytes())
}

// backup exports every table as one JSON document.
func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.ExportAll(r.Context())
	if err != nil {
		h.respondDomainError(w, "backup", nil, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteBackup(&buf, snapshot); err != nil {
		h.respondDomainError(w, "backup", nil, err)
		return
	}
	h.attachment(w, "application/json", "backup", "json")
	_, _ = w.Write(buf.Bytes())
}
