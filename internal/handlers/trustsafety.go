package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/services"
)

type TrustSafetyHandler struct {
	feed       *services.TrustSafetyService
	moderation *services.ModerationService
	autoFlag   *services.AutoFlagService
}

func NewTrustSafetyHandler(feed *services.TrustSafetyService, moderation *services.ModerationService, autoFlag *services.AutoFlagService) *TrustSafetyHandler {
	return &TrustSafetyHandler{feed: feed, moderation: moderation, autoFlag: autoFlag}
}

// LiveFeed handles GET /api/trust-safety/live-feed.
func (h *TrustSafetyHandler) LiveFeed(w http.ResponseWriter, r *http.Request) {
	items := h.feed.BuildLiveFeed(r.Context(), services.FeedOptions{
		Limit:      queryInt(r, "limit", 0),
		RoomID:     r.URL.Query().Get("roomId"),
		SinceHours: queryInt(r, "sinceHours", 0),
	})
	writeJSON(w, http.StatusOK, models.ListResponse{Ok: true, Items: items})
}

// Moderate handles POST /api/trust-safety/moderate.
func (h *TrustSafetyHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req models.ModerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	result, err := h.moderation.Moderate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownAction), errors.Is(err, services.ErrNoTargets):
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AutoFlag handles POST /api/trust-safety/auto-flag.
func (h *TrustSafetyHandler) AutoFlag(w http.ResponseWriter, r *http.Request) {
	var req models.AutoFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	result, err := h.autoFlag.Run(r.Context(), req.Enabled, req.Threshold)
	if err != nil {
		if errors.Is(err, services.ErrBadThreshold) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Reports handles GET /api/trust-safety/reports.
func (h *TrustSafetyHandler) Reports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.BuildReportsSummary(r.Context()))
}
