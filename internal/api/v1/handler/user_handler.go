package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService   service.UserService
	courseService service.CourseService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewUserHandler(userService service.UserService, courseService service.CourseService, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:   userService,
		courseService: courseService,
		validate:      v,
		logger:        logger.With().Str("handler", "UserHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Get("/profiles/{userId}", h.getProfile)

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Get("/users/me", h.getUser)
		r.Patch("/users/me", h.updateUser)
		r.Get("/users/me/courses", h.getUserCourses)
		r.Get("/users/me/links", h.listLinks)
		r.Post("/users/me/links", h.createLink)
		r.Put("/users/me/links/reorder", h.reorderLinks)
		r.Patch("/users/me/links/{linkId}", h.updateLink)
		r.Delete("/users/me/links/{linkId}", h.deleteLink)
	})
}

// getUser godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponseDTO
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "User not found"
// @Router /users/me [get]
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	u, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve user")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// updateUser godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.UserUpdateDTO true "Profile fields"
// @Success 200 {object} dto.UserResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Router /users/me [patch]
func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.UserUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	u, err := h.userService.Update(r.Context(), userID, service.UserUpdate{Name: req.Name, Bio: req.Bio, ImageURL: req.ImageURL})
	if err != nil {
		writeServiceError(w, h.logger, err, "update user")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// getUserCourses godoc
// @Summary List courses authored by the authenticated user
// @Tags users
// @Produce json
// @Success 200 {array} dto.CourseSummaryResponseDTO
// @Router /users/me/courses [get]
func (h *UserHandler) getUserCourses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courses, err := h.courseService.ListOwnCourses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve courses")
		return
	}
	writeJSON(w, http.StatusOK, toCourseSummaryDTOs(courses))
}

// getProfile godoc
// @Summary Get a public profile
// @Tags profiles
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.ProfileResponseDTO
// @Failure 404 {string} string "User not found"
// @Router /profiles/{userId} [get]
func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userId", "User")
	if !ok {
		return
	}
	p, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve profile")
		return
	}
	writeJSON(w, http.StatusOK, dto.ProfileResponseDTO{
		ID:                 p.ID,
		Name:               p.Name,
		ImageURL:           p.ImageURL,
		Bio:                p.Bio,
		Role:               p.Role,
		CreatedAt:          p.CreatedAt,
		Links:              toLinkDTOs(p.Links),
		Courses:            toCourseSummaryDTOs(p.Courses),
		PublishedPostCount: p.PublishedPostCount,
	})
}

func (h *UserHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	links, err := h.userService.ListLinks(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve links")
		return
	}
	writeJSON(w, http.StatusOK, toLinkDTOs(links))
}

// createLink godoc
// @Summary Add a profile link
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.ProfileLinkCreateDTO true "Link"
// @Success 201 {object} dto.ProfileLinkResponseDTO
// @Router /users/me/links [post]
func (h *UserHandler) createLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ProfileLinkCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	l, err := h.userService.CreateLink(r.Context(), userID, req.Label, req.URL)
	if err != nil {
		writeServiceError(w, h.logger, err, "create link")
		return
	}
	writeJSON(w, http.StatusCreated, toLinkDTO(*l))
}

func (h *UserHandler) updateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	linkID, ok := pathID(w, r, "linkId", "Profile link")
	if !ok {
		return
	}
	var req dto.ProfileLinkUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	l, err := h.userService.UpdateLink(r.Context(), userID, linkID, service.LinkUpdate{Label: req.Label, URL: req.URL})
	if err != nil {
		writeServiceError(w, h.logger, err, "update link")
		return
	}
	writeJSON(w, http.StatusOK, toLinkDTO(*l))
}

func (h *UserHandler) deleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	linkID, ok := pathID(w, r, "linkId", "Profile link")
	if !ok {
		return
	}
	if err := h.userService.DeleteLink(r.Context(), userID, linkID); err != nil {
		writeServiceError(w, h.logger, err, "delete link")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderLinks godoc
// @Summary Reorder profile links
// @Tags users
// @Accept json
// @Param body body dto.ReorderDTO true "Positions"
// @Success 204
// @Router /users/me/links/reorder [put]
func (h *UserHandler) reorderLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ReorderDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := h.userService.ReorderLinks(r.Context(), userID, toPositionUpdates(req.List)); err != nil {
		writeServiceError(w, h.logger, err, "reorder links")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
