package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           zerolog.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger.With().Str("handler", "DashboardHandler").Logger(),
	}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Get("/dashboard", h.getDashboard)
		r.Get("/dashboard/analytics", h.getAnalytics)
	})
}

// getDashboard godoc
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponseDTO
// @Router /dashboard [get]
func (h *DashboardHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.Dashboard(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dto.DashboardResponseDTO{
		Completed:      toEnrollmentDTOs(d.Completed),
		InProgress:     toEnrollmentDTOs(d.InProgress),
		PostCount:      d.PostCount,
		IdeaCount:      d.IdeaCount,
		UpcomingEvents: d.UpcomingEvents,
	})
}

// getAnalytics godoc
// @Summary Teacher revenue per course
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.AnalyticsResponseDTO
// @Router /dashboard/analytics [get]
func (h *DashboardHandler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	a, err := h.dashboardService.Analytics(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve analytics")
		return
	}
	courses := make([]dto.CourseRevenueResponseDTO, 0, len(a.Courses))
	for _, c := range a.Courses {
		courses = append(courses, dto.CourseRevenueResponseDTO{CourseID: c.CourseID, Title: c.Title, Total: c.Total.Round(2), Sales: c.Sales})
	}
	writeJSON(w, http.StatusOK, dto.AnalyticsResponseDTO{
		Courses:      courses,
		TotalRevenue: a.TotalRevenue.Round(2),
		TotalSales:   a.TotalSales,
	})
}
