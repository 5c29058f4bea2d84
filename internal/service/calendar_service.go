package service

import (
	"context"
	"strings"
	"time"

	"learnhub/internal/model"
	"learnhub/internal/repository"
)

const (
	DefaultActivityDays = 365
	MaxActivityDays     = 366
)

type EventInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
}

type EventUpdate struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	AllDay      *bool
}

type CalendarService interface {
	ListEvents(ctx context.Context, userID string, from, to *time.Time) ([]model.CalendarEvent, error)
	CreateEvent(ctx context.Context, userID string, in EventInput) (*model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID, eventID string, in EventUpdate) (*model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
	ActivityByDay(ctx context.Context, userID string, days int) ([]model.ActivityDay, error)
}

type calendarService struct {
	repo repository.CalendarRepository
	now  func() time.Time
}

func NewCalendarService(repo repository.CalendarRepository) CalendarService {
	return &calendarService{repo: repo, now: time.Now}
}

// MonthWindow returns [first day of t's month, first day of the next month) in UTC.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (s *calendarService) ListEvents(ctx context.Context, userID string, from, to *time.Time) ([]model.CalendarEvent, error) {
	start, end := MonthWindow(s.now())
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	if end.Before(start) {
		return nil, invalidInput("to must not be before from")
	}
	return s.repo.ListEvents(ctx, userID, start, end)
}

func (s *calendarService) CreateEvent(ctx context.Context, userID string, in EventInput) (*model.CalendarEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	if in.EndsAt.Before(in.StartsAt) {
		return nil, invalidInput("ends_at must not be before starts_at")
	}
	e := &model.CalendarEvent{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		AllDay:      in.AllDay,
	}
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *calendarService) ownedEvent(ctx context.Context, userID, eventID string) (*model.CalendarEvent, error) {
	e, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.UserID != userID {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *calendarService) UpdateEvent(ctx context.Context, userID, eventID string, in EventUpdate) (*model.CalendarEvent, error) {
	e, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		e.Title = title
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.StartsAt != nil {
		e.StartsAt = *in.StartsAt
	}
	if in.EndsAt != nil {
		e.EndsAt = *in.EndsAt
	}
	if in.AllDay != nil {
		e.AllDay = *in.AllDay
	}
	if e.EndsAt.Before(e.StartsAt) {
		return nil, invalidInput("ends_at must not be before starts_at")
	}
	if err := s.repo.UpdateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, eventID)
}

// ActivityByDay returns one entry per day for the last days days, oldest
// first, with zero counts for quiet days.
func (s *calendarService) ActivityByDay(ctx context.Context, userID string, days int) ([]model.ActivityDay, error) {
	if days <= 0 {
		days = DefaultActivityDays
	}
	if days > MaxActivityDays {
		return nil, invalidInput("days must be at most %d", MaxActivityDays)
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.repo.CountActivitiesByDay(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return FillActivityDays(rows, since, days), nil
}

// FillActivityDays expands sparse per-day counts into a dense series starting at since.
func FillActivityDays(rows []model.ActivityDay, since time.Time, days int) []model.ActivityDay {
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Date.UTC().Format(time.DateOnly)] += r.Count
	}
	out := make([]model.ActivityDay, days)
	for i := range out {
		day := since.AddDate(0, 0, i)
		out[i] = model.ActivityDay{Date: day, Count: counts[day.Format(time.DateOnly)]}
	}
	return out
}
