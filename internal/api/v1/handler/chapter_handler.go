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

type ChapterHandler struct {
	chapterService service.ChapterService
	validate       *validator.Validate
	logger         zerolog.Logger
}

func NewChapterHandler(chapterService service.ChapterService, v *validator.Validate, logger zerolog.Logger) *ChapterHandler {
	return &ChapterHandler{
		chapterService: chapterService,
		validate:       v,
		logger:         logger.With().Str("handler", "ChapterHandler").Logger(),
	}
}

// RegisterRoutes mounts chapter and section routes.
func (h *ChapterHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Get("/courses/{courseId}/chapters/{chapterId}", h.getChapter)
	r.Get("/chapters/{chapterId}/sections", h.listSections)

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Post("/courses/{courseId}/chapters", h.createChapter)
		r.Put("/courses/{courseId}/chapters/reorder", h.reorderChapters)
		r.Patch("/courses/{courseId}/chapters/{chapterId}", h.updateChapter)
		r.Delete("/courses/{courseId}/chapters/{chapterId}", h.deleteChapter)
		r.Patch("/courses/{courseId}/chapters/{chapterId}/publish", h.publishChapter)
		r.Patch("/courses/{courseId}/chapters/{chapterId}/unpublish", h.unpublishChapter)

		r.Post("/chapters/{chapterId}/sections", h.createSection)
		r.Put("/chapters/{chapterId}/sections/reorder", h.reorderSections)
		r.Patch("/chapters/{chapterId}/sections/{sectionId}", h.updateSection)
		r.Delete("/chapters/{chapterId}/sections/{sectionId}", h.deleteSection)
	})
}

// courseChapterIDs reads both IDs of a nested chapter route.
func courseChapterIDs(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return "", "", false
	}
	chapterID, ok := pathID(w, r, "chapterId", "Chapter")
	if !ok {
		return "", "", false
	}
	return courseID, chapterID, true
}

// createChapter godoc
// @Summary Add a chapter to a course
// @Tags chapters
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param body body dto.ChapterCreateDTO true "Chapter title"
// @Success 201 {object} dto.ChapterResponseDTO
// @Failure 400 {string} string "Validation failed"
// @Failure 403 {string} string "Forbidden"
// @Router /courses/{courseId}/chapters [post]
func (h *ChapterHandler) createChapter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	var req dto.ChapterCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	ch, err := h.chapterService.CreateChapter(r.Context(), userID, courseID, req.Title)
	if err != nil {
		writeServiceError(w, h.logger, err, "create chapter")
		return
	}
	writeJSON(w, http.StatusCreated, toChapterDTO(ch))
}

// getChapter godoc
// @Summary Get a chapter with its sections
// @Description Non-owners need the chapter to be free or the course to be purchased.
// @Tags chapters
// @Produce json
// @Param courseId path string true "Course ID"
// @Param chapterId path string true "Chapter ID"
// @Success 200 {object} dto.ChapterDetailResponseDTO
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Chapter not found"
// @Router /courses/{courseId}/chapters/{chapterId} [get]
func (h *ChapterHandler) getChapter(w http.ResponseWriter, r *http.Request) {
	courseID, chapterID, ok := courseChapterIDs(w, r)
	if !ok {
		return
	}
	d, err := h.chapterService.GetChapter(r.Context(), middleware.UserID(r.Context()), courseID, chapterID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve chapter")
		return
	}
	writeJSON(w, http.StatusOK, dto.ChapterDetailResponseDTO{
		ChapterResponseDTO: toChapterDTO(d.Chapter),
		Sections:           toSectionDTOs(d.Sections),
		NextChapterID:      optionalString(d.NextChapterID),
	})
}

// updateChapter godoc
// @Summary Update a chapter
// @Tags chapters
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param chapterId path string true "Chapter ID"
// @Param body body dto.ChapterUpdateDTO true "Fields to change"
// @Success 200 {object} dto.ChapterResponseDTO
// @Router /courses/{courseId}/chapters/{chapterId} [patch]
func (h *ChapterHandler) updateChapter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, chapterID, ok := courseChapterIDs(w, r)
	if !ok {
		return
	}
	var req dto.ChapterUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	ch, err := h.chapterService.UpdateChapter(r.Context(), userID, courseID, chapterID, service.ChapterUpdate{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		IsFree:      req.IsFree,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "update chapter")
		return
	}
	writeJSON(w, http.StatusOK, toChapterDTO(ch))
}

// deleteChapter godoc
// @Summary Delete a chapter
// @Description Deleting the last published chapter unpublishes the course.
// @Tags chapters
// @Param courseId path string true "Course ID"
// @Param chapterId path string true "Chapter ID"
// @Success 204
// @Router /courses/{courseId}/chapters/{chapterId} [delete]
func (h *ChapterHandler) deleteChapter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, chapterID, ok := courseChapterIDs(w, r)
	if !ok {
		return
	}
	if err := h.chapterService.DeleteChapter(r.Context(), userID, courseID, chapterID); err != nil {
		writeServiceError(w, h.logger, err, "delete chapter")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// publishChapter godoc
// @Summary Publish a chapter
// @Tags chapters
// @Produce json
// @Param courseId path string true "Course ID"
// @Param chapterId path string true "Chapter ID"
// @Success 200 {object} dto.ChapterResponseDTO
// @Failure 400 {object} dto.NotReadyResponseDTO
// @Router /courses/{courseId}/chapters/{chapterId}/publish [patch]
func (h *ChapterHandler) publishChapter(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, h.chapterService.PublishChapter, "publish chapter")
}

// unpublishChapter godoc
// @Summary Unpublish a chapter
// @Tags chapters
// @Produce json
// @Param courseId path string true "Course ID"
// @Param chapterId path string true "Chapter ID"
// @Success 200 {object} dto.ChapterResponseDTO
// @Router /courses/{courseId}/chapters/{chapterId}/unpublish [patch]
func (h *ChapterHandler) unpublishChapter(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, h.chapterService.UnpublishChapter, "unpublish chapter")
}

type chapterTransition func(ctx context.Context, userID, courseID, chapterID string) (*model.Chapter, error)

func (h *ChapterHandler) setPublished(w http.ResponseWriter, r *http.Request, fn chapterTransition, action string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, chapterID, ok := courseChapterIDs(w, r)
	if !ok {
		return
	}
	ch, err := fn(r.Context(), userID, courseID, chapterID)
	if err != nil {
		writeServiceError(w, h.logger, err, action)
		return
	}
	writeJSON(w, http.StatusOK, toChapterDTO(ch))
}

// reorderChapters godoc
// @Summary Reorder chapters
// @Tags chapters
// @Accept json
// @Param courseId path string true "Course ID"
// @Param body body dto.ReorderDTO true "Positions"
// @Success 204
// @Router /courses/{courseId}/chapters/reorder [put]
func (h *ChapterHandler) reorderChapters(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathID(w, r, "courseId", "Course")
	if !ok {
		return
	}
	var req dto.ReorderDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := h.chapterService.ReorderChapters(r.Context(), userID, courseID, toPositionUpdates(req.List)); err != nil {
		writeServiceError(w, h.logger, err, "reorder chapters")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createSection godoc
// @Summary Add a section to a chapter
// @Tags sections
// @Accept json
// @Produce json
// @Param chapterId path string true "Chapter ID"
// @Param body body dto.SectionCreateDTO true "Section title"
// @Success 201 {object} dto.SectionResponseDTO
// @Router /chapters/{chapterId}/sections [post]
func (h *ChapterHandler) createSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chapterID, ok := pathID(w, r, "chapterId", "Chapter")
	if !ok {
		return
	}
	var req dto.SectionCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	s, err := h.chapterService.CreateSection(r.Context(), userID, chapterID, req.Title)
	if err != nil {
		writeServiceError(w, h.logger, err, "create section")
		return
	}
	writeJSON(w, http.StatusCreated, toSectionDTO(s))
}

func (h *ChapterHandler) listSections(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := pathID(w, r, "chapterId", "Chapter")
	if !ok {
		return
	}
	sections, err := h.chapterService.ListSections(r.Context(), middleware.UserID(r.Context()), chapterID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve sections")
		return
	}
	writeJSON(w, http.StatusOK, toSectionDTOs(sections))
}

func (h *ChapterHandler) chapterSectionIDs(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	chapterID, ok := pathID(w, r, "chapterId", "Chapter")
	if !ok {
		return "", "", false
	}
	sectionID, ok := pathID(w, r, "sectionId", "Section")
	if !ok {
		return "", "", false
	}
	return chapterID, sectionID, true
}

func (h *ChapterHandler) updateSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chapterID, sectionID, ok := h.chapterSectionIDs(w, r)
	if !ok {
		return
	}
	var req dto.SectionUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	s, err := h.chapterService.UpdateSection(r.Context(), userID, chapterID, sectionID, service.SectionUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		writeServiceError(w, h.logger, err, "update section")
		return
	}
	writeJSON(w, http.StatusOK, toSectionDTO(s))
}

func (h *ChapterHandler) deleteSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chapterID, sectionID, ok := h.chapterSectionIDs(w, r)
	if !ok {
		return
	}
	if err := h.chapterService.DeleteSection(r.Context(), userID, chapterID, sectionID); err != nil {
		writeServiceError(w, h.logger, err, "delete section")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderSections godoc
// @Summary Reorder sections
// @Description All positions are written in one transaction.
// @Tags sections
// @Accept json
// @Param chapterId path string true "Chapter ID"
// @Param body body dto.ReorderDTO true "Positions"
// @Success 204
// @Failure 404 {string} string "Section not found"
// @Router /chapters/{chapterId}/sections/reorder [put]
func (h *ChapterHandler) reorderSections(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	chapterID, ok := pathID(w, r, "chapterId", "Chapter")
	if !ok {
		return
	}
	var req dto.ReorderDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	if err := h.chapterService.ReorderSections(r.Context(), userID, chapterID, toPositionUpdates(req.List)); err != nil {
		writeServiceError(w, h.logger, err, "reorder sections")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
