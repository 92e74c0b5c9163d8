package handlers

import (
	"net/http"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.Stats(r.Context()))
}

func (h *AnalyticsHandler) RevenueSeries(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if r.URL.Query().Get("grouping") == "weekly" {
		writeJSON(w, http.StatusOK, h.analytics.WeeklyRevenueSeries(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, h.analytics.RevenueSeries(r.Context(), period))
}

func (h *AnalyticsHandler) SubscriptionsSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analytics.SubscriptionsSeries(r.Context()))
}

func (h *AnalyticsHandler) RegionInsights(w http.ResponseWriter, r *http.Request) {
	regions := h.analytics.RegionInsights(r.Context(), queryInt(r, "limit", 0))
	writeJSON(w, http.StatusOK, models.ListResponse{Ok: true, Items: regions})
}

func (h *AnalyticsHandler) EngagementHeatmap(w http.ResponseWriter, r *http.Request) {
	cells := h.analytics.EngagementHeatmap(r.Context(), queryInt(r, "days", 0))
	writeJSON(w, http.StatusOK, models.ListResponse{Ok: true, Items: cells})
}

func (h *AnalyticsHandler) DateReports(w http.ResponseWriter, r *http.Request) {
	rows := h.analytics.DateReports(r.Context(), queryInt(r, "limit", 0))
	writeJSON(w, http.StatusOK, models.ListResponse{Ok: true, Items: rows})
}

func (h *AnalyticsHandler) OngoingDates(w http.ResponseWriter, r *http.Request) {
	dates := h.analytics.OngoingDates(r.Context(), queryInt(r, "limit", 0))
	writeJSON(w, http.StatusOK, models.ListResponse{Ok: true, Items: dates})
}
