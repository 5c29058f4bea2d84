package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UploadHandler struct {
	uploadService service.UploadService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewUploadHandler(uploadService service.UploadService, v *validator.Validate, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		validate:      v,
		logger:        logger.With().Str("handler", "UploadHandler").Logger(),
	}
}

func (h *UploadHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.With(authMw).Post("/uploads/images", h.presignImage)
}

// presignImage godoc
// @Summary Request an image upload URL
// @Description Returns a presigned PUT URL; the client uploads the file directly to object storage.
// @Tags uploads
// @Accept json
// @Produce json
// @Param body body dto.ImageUploadDTO true "File metadata"
// @Success 200 {object} dto.ImageUploadResponseDTO
// @Failure 400 {string} string "Validation failed"
// @Failure 429 {string} string "Too many requests"
// @Router /uploads/images [post]
func (h *UploadHandler) presignImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ImageUploadDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	up, err := h.uploadService.PresignImage(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		writeServiceError(w, h.logger, err, "create upload URL")
		return
	}
	writeJSON(w, http.StatusOK, dto.ImageUploadResponseDTO{
		UploadURL: up.UploadURL,
		Key:       up.Key,
		PublicURL: up.PublicURL,
		ExpiresAt: up.ExpiresAt,
	})
}
