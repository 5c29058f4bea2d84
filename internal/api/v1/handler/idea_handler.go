package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type IdeaHandler struct {
	ideaService service.IdeaService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewIdeaHandler(ideaService service.IdeaService, v *validator.Validate, logger zerolog.Logger) *IdeaHandler {
	return &IdeaHandler{
		ideaService: ideaService,
		validate:    v,
		logger:      logger.With().Str("handler", "IdeaHandler").Logger(),
	}
}

// RegisterRoutes mounts the private idea board. Every route is owner-only.
func (h *IdeaHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Route("/ideas", func(r chi.Router) {
		r.Use(authMw)
		r.Get("/", h.listIdeas)
		r.Post("/", h.createIdea)
		r.Get("/{ideaId}", h.getIdea)
		r.Patch("/{ideaId}", h.updateIdea)
		r.Delete("/{ideaId}", h.deleteIdea)
	})
}

// listIdeas godoc
// @Summary List the user's ideas
// @Tags ideas
// @Produce json
// @Success 200 {array} dto.IdeaResponseDTO
// @Router /ideas [get]
func (h *IdeaHandler) listIdeas(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ideas, err := h.ideaService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve ideas")
		return
	}
	out := make([]dto.IdeaResponseDTO, 0, len(ideas))
	for i := range ideas {
		out = append(out, toIdeaDTO(&ideas[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// createIdea godoc
// @Summary Save an idea
// @Tags ideas
// @Accept json
// @Produce json
// @Param body body dto.IdeaCreateDTO true "Idea"
// @Success 201 {object} dto.IdeaResponseDTO
// @Router /ideas [post]
func (h *IdeaHandler) createIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.IdeaCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	idea, err := h.ideaService.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		writeServiceError(w, h.logger, err, "create idea")
		return
	}
	writeJSON(w, http.StatusCreated, toIdeaDTO(idea))
}

func (h *IdeaHandler) getIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "ideaId", "Idea")
	if !ok {
		return
	}
	idea, err := h.ideaService.Get(r.Context(), userID, ideaID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve idea")
		return
	}
	writeJSON(w, http.StatusOK, toIdeaDTO(idea))
}

func (h *IdeaHandler) updateIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "ideaId", "Idea")
	if !ok {
		return
	}
	var req dto.IdeaUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	idea, err := h.ideaService.Update(r.Context(), userID, ideaID, service.IdeaUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		writeServiceError(w, h.logger, err, "update idea")
		return
	}
	writeJSON(w, http.StatusOK, toIdeaDTO(idea))
}

func (h *IdeaHandler) deleteIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ideaID, ok := pathID(w, r, "ideaId", "Idea")
	if !ok {
		return
	}
	if err := h.ideaService.Delete(r.Context(), userID, ideaID); err != nil {
		writeServiceError(w, h.logger, err, "delete idea")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
