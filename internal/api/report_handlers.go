package api

import (
	"net/http"

	"github.com/tallerhq/backoffice/internal/reports"
)

// handleReportsSummary computes the financial summary over the caller's
// records, optionally restricted to one month (?month=2024-03). Reads go
// through the gateway, so repeated dashboard loads hit the cache.
func (s *Server) handleReportsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := UserID(ctx)

	orders, err := s.gw.ListOrders(ctx, ownerID)
	if err != nil {
		s.respondStoreError(w, err, "errors.load_failed")
		return
	}
	casual, err := s.gw.ListCasualExpenses(ctx, ownerID)
	if err != nil {
		s.respondStoreError(w, err, "errors.load_failed")
		return
	}
	budget, err := s.gw.ListBudgetExpenses(ctx, ownerID)
	if err != nil {
		s.respondStoreError(w, err, "errors.load_failed")
		return
	}
	licenses, err := s.gw.ListLicenses(ctx, ownerID)
	if err != nil {
		s.respondStoreError(w, err, "errors.load_failed")
		return
	}

	var summary *reports.Summary
	if month := r.URL.Query().Get("month"); month != "" {
		summary = reports.BuildForMonth(month, orders, casual, budget, licenses)
	} else {
		summary = reports.Build(orders, casual, budget, licenses)
	}
	respondJSON(w, http.StatusOK, summary)
}
