package handlers

import (
	"errors"
	"net/http"

	"github.com/quickdate/admin-api/internal/models"
	"github.com/quickdate/admin-api/internal/services"
)

type UploadHandler struct {
	photos      *services.PhotoService
	maxUploadMB int64
}

func NewUploadHandler(photos *services.PhotoService, maxUploadMB int64) *UploadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &UploadHandler{photos: photos, maxUploadMB: maxUploadMB}
}

// UserPhoto handles POST /api/uploads/user-photo (multipart form, field "file").
func (h *UploadHandler) UserPhoto(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("uploads are not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB<<20)
	if err := r.ParseMultipartForm(h.maxUploadMB << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("file field is required"))
		return
	}
	defer file.Close()

	result, err := h.photos.UploadUserPhoto(r.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, services.ErrImageRejected) {
			writeJSON(w, http.StatusUnprocessableEntity, models.NewErrorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, models.ItemResponse{Ok: true, Item: result})
}
