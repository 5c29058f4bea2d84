package service

import (
	"context"
	"fmt"
	"time"

	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/shopspring/decimal"
)

// Dashboard summarizes a learner's home page.
type Dashboard struct {
	Completed      []Enrollment
	InProgress     []Enrollment
	PostCount      int
	IdeaCount      int
	UpcomingEvents int
}

// Analytics is an author's revenue report.
type Analytics struct {
	Courses      []model.CourseRevenue
	TotalRevenue decimal.Decimal
	TotalSales   int
}

type DashboardService interface {
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	Analytics(ctx context.Context, userID string) (*Analytics, error)
}

type dashboardService struct {
	enrollments EnrollmentService
	purchases   repository.PurchaseRepository
	posts       repository.PostRepository
	ideas       repository.IdeaRepository
	calendar    repository.CalendarRepository
	now         func() time.Time
}

func NewDashboardService(enrollments EnrollmentService, purchases repository.PurchaseRepository, posts repository.PostRepository, ideas repository.IdeaRepository, calendar repository.CalendarRepository) DashboardService {
	return &dashboardService{
		enrollments: enrollments,
		purchases:   purchases,
		posts:       posts,
		ideas:       ideas,
		calendar:    calendar,
		now:         time.Now,
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	enrolled, err := s.enrollments.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Completed: []Enrollment{}, InProgress: []Enrollment{}}
	for _, e := range enrolled {
		if e.ChapterCount > 0 && e.Percentage >= 100 {
			d.Completed = append(d.Completed, e)
		} else {
			d.InProgress = append(d.InProgress, e)
		}
	}
	if d.PostCount, err = s.posts.CountPostsByUserID(ctx, userID, false); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if d.IdeaCount, err = s.ideas.CountIdeas(ctx, userID); err != nil {
		return nil, fmt.Errorf("count ideas: %w", err)
	}
	if d.UpcomingEvents, err = s.calendar.CountUpcomingEvents(ctx, userID, s.now()); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	return d, nil
}

func (s *dashboardService) Analytics(ctx context.Context, userID string) (*Analytics, error) {
	rows, err := s.purchases.RevenueByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := &Analytics{Courses: rows, TotalRevenue: decimal.Zero}
	for _, r := range rows {
		a.TotalRevenue = a.TotalRevenue.Add(r.Total)
		a.TotalSales += r.Sales
	}
	return a, nil
}
