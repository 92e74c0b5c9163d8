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

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.users.List(r.Context(), queryInt(r, "limit", 0))
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

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	id, err := h.users.Upsert(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrMissingUserFields) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, models.ItemResponse{Ok: true, ID: id})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.ItemResponse{Ok: true, ID: doc.ID, Item: doc.Data})
}

func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid request body"))
		return
	}
	err := h.users.Patch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.users.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("user not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, models.OKResponse{Ok: true})
}
