package upload_api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"campus-events/internal/apperror"
	"campus-events/internal/logger"
	"campus-events/internal/uploads"
	"campus-events/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Uploader *uploads.Uploader
	Logger   *logger.Logger
}

func NewHandler(uploader *uploads.Uploader, log *logger.Logger) *Handler {
	return &Handler{Uploader: uploader, Logger: log}
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/uploads", h.UploadImage)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.Uploader.MaxBytes+64<<10)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, "Image too large", apperror.ValidationFailed("image", "image exceeds the upload limit"))
			return
		}
		utils.WriteError(w, "Invalid upload", apperror.ValidationFailed("image", "multipart field image is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.Uploader.MaxBytes+1))
	if err != nil {
		utils.WriteError(w, "Invalid upload", apperror.ValidationFailed("image", err.Error()))
		return
	}

	url, err := h.Uploader.Upload(r.Context(), header.Filename, data)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			h.Logger.Error("UPLOAD", fmt.Sprintf("Image upload failed: %v", err))
		}
		utils.WriteError(w, "Failed to upload image", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Image uploaded", map[string]string{"url": url})
}
