package handler

import (
	"context"
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type CourseHandler struct {
	courseService service.CourseService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewCourseHandler(courseService service.CourseService, v *validator.Validate, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		validate:      v,
		logger:        logger.With().Str("handler", "CourseHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 course routes. Reads use the optional viewer identity.
func (h *CourseHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Get("/categories", h.listCategories)
	r.Get("/courses", h.listCatalog)
	r.Get("/courses/{courseId}", h.getCourse)
	r.Get("/courses/{courseId}/objectives", h.listObjectives)

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Post("/courses", h.createCourse)
		r.Patch("/courses/{courseId}", h.updateCourse)
		r.Delete("/courses/{courseId}", h.deleteCourse)
		r.Patch("/courses/{courseId}/publish", h.publishCourse)
		r.Patch("/courses/{courseId}/unpublish", h.unpublishCourse)
		r.Post("/courses/{courseId}/objectives", h.createObjective)
		r.Put("/courses/{courseId}/objectives/reorder", h.reorderObjectives)
		r.Delete("/courses/{courseId}/objectives/{objectiveId}", h.deleteObjective)
	})
}

// createCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Param body body dto.CourseCreateDTO true "Course title"
// @Success 201 {object} dto.CourseResponseDTO
// @Failure 400 {string} string "Validation failed"
// @Failure 401 {string} string "Unauthorized"
// @Router /courses [post]
func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.CourseCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.courseService.CreateCourse(r.Context(), userID, req.Title)
	if err != nil {
		writeServiceError(w, h.logger, err, "create course")
		return
	}
	writeJSON(w, http.StatusCreated, toCourseDTO(c))
}

// listCatalog godoc
// @Summary List published courses
// @Tags courses
// @Produce json
// @Param q query string false "Title search"
// @Param category_id query string false "Category filter"
// @Success 200 {array} dto.CourseSummaryResponseDTO
// @Router /courses [get]
func (h *CourseHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := h.courseService.ListCatalog(r.Context(), q.Get("q"), q.Get("category_id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve courses")
		return
	}
	writeJSON(w, http.StatusOK, toCourseSummaryDTOs(courses))
}

// getCourse godoc
// @Summary Get a course page
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CourseDetailResponseDTO
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	d, err := h.courseService.GetCourse(r.Context(), middleware.UserID(r.Context()), courseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve course")
		return
	}
	writeJSON(w, http.StatusOK, toCourseDetailDTO(d))
}

func toCourseDetailDTO(d *service.CourseDetail) dto.CourseDetailResponseDTO {
	resp := dto.CourseDetailResponseDTO{
		CourseResponseDTO: toCourseDTO(d.Course),
		Chapters:          toChapterDTOs(d.Chapters),
		Objectives:        toObjectiveDTOs(d.Objectives),
		IsOwner:           d.IsOwner,
		Purchased:         d.Purchased,
	}
	if d.Category != nil {
		resp.Category = &dto.CategoryResponseDTO{ID: d.Category.ID, Name: d.Category.Name}
	}
	return resp
}

// updateCourse godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param body body dto.CourseUpdateDTO true "Fields to change"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 400 {string} string "Validation failed"
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId} [patch]
func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	var req dto.CourseUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.courseService.UpdateCourse(r.Context(), userID, courseID, service.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "update course")
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(c))
}

// deleteCourse godoc
// @Summary Delete a course
// @Tags courses
// @Param courseId path string true "Course ID"
// @Success 204
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId} [delete]
func (h *CourseHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	if err := h.courseService.DeleteCourse(r.Context(), userID, courseID); err != nil {
		writeServiceError(w, h.logger, err, "delete course")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// publishCourse godoc
// @Summary Publish a course
// @Description Fails with the list of missing fields when the course is incomplete.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 400 {object} dto.NotReadyResponseDTO
// @Router /courses/{courseId}/publish [patch]
func (h *CourseHandler) publishCourse(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, h.courseService.PublishCourse, "publish course")
}

// unpublishCourse godoc
// @Summary Unpublish a course
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CourseResponseDTO
// @Router /courses/{courseId}/unpublish [patch]
func (h *CourseHandler) unpublishCourse(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, h.courseService.UnpublishCourse, "unpublish course")
}

type courseTransition func(ctx context.Context, userID, courseID string) (*model.Course, error)

func (h *CourseHandler) setPublished(w http.ResponseWriter, r *http.Request, fn courseTransition, action string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	c, err := fn(r.Context(), userID, courseID)
	if err != nil {
		writeServiceError(w, h.logger, err, action)
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(c))
}

// listCategories godoc
// @Summary List course categories
// @Tags courses
// @Produce json
// @Success 200 {array} dto.CategoryResponseDTO
// @Router /categories [get]
func (h *CourseHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.courseService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve categories")
		return
	}
	out := make([]dto.CategoryResponseDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.CategoryResponseDTO{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CourseHandler) listObjectives(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	objectives, err := h.courseService.ListObjectives(r.Context(), middleware.UserID(r.Context()), courseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve objectives")
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTOs(objectives))
}

// createObjective godoc
// @Summary Add a learning objective
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param body body dto.ObjectiveCreateDTO true "Objective"
// @Success 201 {object} dto.ObjectiveResponseDTO
// @Router /courses/{courseId}/objectives [post]
func (h *CourseHandler) createObjective(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	var req dto.ObjectiveCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	o, err := h.courseService.CreateObjective(r.Context(), userID, courseID, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err, "create objective")
		return
	}
	writeJSON(w, http.StatusCreated, dto.ObjectiveResponseDTO{ID: o.ID, Text: o.Text, Position: o.Position})
}

func (h *CourseHandler) deleteObjective(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	objectiveID, ok := pathID(w, r, "objectiveId", "Objective")
	if !ok {
		return
	}
	if err := h.courseService.DeleteObjective(r.Context(), userID, courseID, objectiveID); err != nil {
		writeServiceError(w, h.logger, err, "delete objective")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderObjectives godoc
// @Summary Move a learning objective
// @Description Moves the objective at index from to index to and rewrites every position.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param body body dto.MoveDTO true "Move"
// @Success 200 {array} dto.ObjectiveResponseDTO
// @Failure 400 {string} string "Index out of range"
// @Router /courses/{courseId}/objectives/reorder [put]
func (h *CourseHandler) reorderObjectives(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	var req dto.MoveDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	objectives, err := h.courseService.ReorderObjectives(r.Context(), userID, courseID, *req.From, *req.To)
	if err != nil {
		writeServiceError(w, h.logger, err, "reorder objectives")
		return
	}
	writeJSON(w, http.StatusOK, toObjectiveDTOs(objectives))
}
