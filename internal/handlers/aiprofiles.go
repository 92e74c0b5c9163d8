package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/services"
	"github.com/quickdate/admin-api/internal/store"
)

type AIProfileHandler struct {
	profiles *services.AIProfileService
}

func NewAIProfileHandler(profiles *services.AIProfileService) *AIProfileHandler {
	return &AIProfileHandler{profiles: profiles}
}

func (h *AIProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.profiles.List(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	items := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		item := d.Data
		item["id"] = d.ID
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, models.ListResponse{Ok: true, Items: items})
}

func (h *AIProfileHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateProfilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	resp, err := h.profiles.Generate(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrBadProfileCount) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AIProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeProfileErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ItemResponse{Ok: true, ID: doc.ID, Item: doc.Data})
}

func (h *AIProfileHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	if err := h.profiles.Patch(r.Context(), chi.URLParam(r, "id"), &req); err != nil {
		h.writeProfileErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}

func (h *AIProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeProfileErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}

func (h *AIProfileHandler) Play(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.SetStatus(r.Context(), chi.URLParam(r, "id"), "Active"); err != nil {
		h.writeProfileErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}

func (h *AIProfileHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.SetStatus(r.Context(), chi.URLParam(r, "id"), "Paused"); err != nil {
		h.writeProfileErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}

func (h *AIProfileHandler) PauseAll(w http.ResponseWriter, r *http.Request) {
	updated, err := h.profiles.PauseAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.SweepResponse{Ok: true, Updated: updated})
}

func (h *AIProfileHandler) CleanExpired(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.profiles.CleanExpired(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.SweepResponse{Ok: true, Deleted: deleted})
}

func (h *AIProfileHandler) RegenerateExpired(w http.ResponseWriter, r *http.Request) {
	regenerated, err := h.profiles.RegenerateExpired(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.SweepResponse{Ok: true, Regenerated: regenerated})
}

func (h *AIProfileHandler) writeProfileErr(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("profile not found"))
		return
	}
	writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
}
