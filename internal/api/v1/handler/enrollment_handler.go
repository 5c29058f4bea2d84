package handler

import (
	"io"
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxWebhookBytes matches the payload ceiling Stripe documents for webhook events.
const maxWebhookBytes = 65536

type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewEnrollmentHandler(enrollmentService service.EnrollmentService, v *validator.Validate, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		validate:          v,
		logger:            logger.With().Str("handler", "EnrollmentHandler").Logger(),
	}
}

// RegisterRoutes mounts checkout, webhook and progress routes. The webhook is
// authenticated by its signature, not a session.
func (h *EnrollmentHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Post("/webhooks/stripe", h.stripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Post("/courses/{courseId}/checkout", h.checkout)
		r.Get("/courses/{courseId}/progress", h.getProgress)
		r.Put("/chapters/{chapterId}/progress", h.setProgress)
		r.Get("/users/me/enrollments", h.listEnrollments)
	})
}

// checkout godoc
// @Summary Enroll in a course
// @Description Free courses enroll immediately (201); paid courses return a Stripe Checkout URL.
// @Tags enrollment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CheckoutResponseDTO
// @Success 201 {object} dto.CheckoutResponseDTO
// @Failure 404 {string} string "Course not found"
// @Failure 409 {string} string "Course already purchased"
// @Router /courses/{courseId}/checkout [post]
func (h *EnrollmentHandler) checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	res, err := h.enrollmentService.Checkout(r.Context(), userID, courseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "start checkout")
		return
	}
	if res.Enrolled {
		writeJSON(w, http.StatusCreated, dto.CheckoutResponseDTO{Enrolled: true})
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponseDTO{URL: res.URL})
}

// stripeWebhook godoc
// @Summary Receive Stripe events
// @Tags enrollment
// @Accept json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200
// @Failure 400 {string} string "Invalid signature"
// @Router /webhooks/stripe [post]
func (h *EnrollmentHandler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if err := h.enrollmentService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeServiceError(w, h.logger, err, "handle webhook")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// listEnrollments godoc
// @Summary List purchased courses with progress
// @Tags enrollment
// @Produce json
// @Success 200 {array} dto.EnrollmentResponseDTO
// @Router /users/me/enrollments [get]
func (h *EnrollmentHandler) listEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.ListEnrollments(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve enrollments")
		return
	}
	writeJSON(w, http.StatusOK, toEnrollmentDTOs(enrollments))
}

// setProgress godoc
// @Summary Mark a chapter complete or incomplete
// @Tags enrollment
// @Accept json
// @Produce json
// @Param chapterId path string true "Chapter ID"
// @Param body body dto.ProgressUpdateDTO true "Completion"
// @Success 200 {object} dto.ProgressResponseDTO
// @Failure 403 {string} string "Forbidden"
// @Router /chapters/{chapterId}/progress [put]
func (h *EnrollmentHandler) setProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chapterID, ok := pathID(w, r, "chapterId", "Chapter")
	if !ok {
		return
	}
	var req dto.ProgressUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	p, err := h.enrollmentService.SetProgress(r.Context(), userID, chapterID, *req.IsCompleted)
	if err != nil {
		writeServiceError(w, h.logger, err, "update progress")
		return
	}
	writeJSON(w, http.StatusOK, dto.ProgressResponseDTO{ChapterID: p.ChapterID, IsCompleted: p.IsCompleted, UpdatedAt: p.UpdatedAt})
}

// getProgress godoc
// @Summary Get course completion percentage
// @Tags enrollment
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CourseProgressResponseDTO
// @Router /courses/{courseId}/progress [get]
func (h *EnrollmentHandler) getProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	pct, err := h.enrollmentService.GetProgress(r.Context(), userID, courseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve progress")
		return
	}
	writeJSON(w, http.StatusOK, dto.CourseProgressResponseDTO{CourseID: courseID, Percentage: pct})
}
