package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CalendarRepository interface {
	CreateEvent(ctx context.Context, e *model.CalendarEvent) error
	GetEventByID(ctx context.Context, eventID string) (*model.CalendarEvent, error)
	// ListEvents returns events overlapping [from, to).
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]model.CalendarEvent, error)
	CountUpcomingEvents(ctx context.Context, userID string, now time.Time) (int, error)
	UpdateEvent(ctx context.Context, e *model.CalendarEvent) error
	DeleteEvent(ctx context.Context, eventID string) error

	CreateActivity(ctx context.Context, a *model.Activity) error
	// CountActivitiesByDay returns per-day counts since the given instant, oldest first.
	CountActivitiesByDay(ctx context.Context, userID string, since time.Time) ([]model.ActivityDay, error)
}

type calendarRepo struct {
	pool *pgxpool.Pool
}

func NewCalendarRepo(pool *pgxpool.Pool) CalendarRepository {
	return &calendarRepo{pool: pool}
}

const eventColumns = `id, user_id, title, description, starts_at, ends_at, all_day, created_at, updated_at`

func eventScanTargets(e *model.CalendarEvent) []any {
	return []any{&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.AllDay, &e.CreatedAt, &e.UpdatedAt}
}

func (r *calendarRepo) CreateEvent(ctx context.Context, e *model.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (user_id, title, description, starts_at, ends_at, all_day)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, e.UserID, e.Title, e.Description, e.StartsAt, e.EndsAt, e.AllDay).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return nil
}

func (r *calendarRepo) GetEventByID(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	if err := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE id = $1`, eventID).Scan(eventScanTargets(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch calendar event %s: %w", eventID, err)
	}
	return &e, nil
}

func (r *calendarRepo) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]model.CalendarEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE user_id = $1 AND starts_at < $3 AND ends_at >= $2
		ORDER BY starts_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	events := []model.CalendarEvent{}
	for rows.Next() {
		var e model.CalendarEvent
		if err := rows.Scan(eventScanTargets(&e)...); err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *calendarRepo) CountUpcomingEvents(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM calendar_events WHERE user_id = $1 AND starts_at >= $2`, userID, now).Scan(&n); err != nil {
		return 0, fmt.Errorf("count upcoming events: %w", err)
	}
	return n, nil
}

func (r *calendarRepo) UpdateEvent(ctx context.Context, e *model.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $1, description = $2, starts_at = $3, ends_at = $4, all_day = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, e.Title, e.Description, e.StartsAt, e.EndsAt, e.AllDay, e.ID).Scan(&e.UpdatedAt); err != nil {
		return fmt.Errorf("update calendar event %s: %w", e.ID, err)
	}
	return nil
}

func (r *calendarRepo) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, eventID); err != nil {
		return fmt.Errorf("delete calendar event %s: %w", eventID, err)
	}
	return nil
}

func (r *calendarRepo) CreateActivity(ctx context.Context, a *model.Activity) error {
	query := `INSERT INTO activities (user_id, kind, subject_id) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.pool.QueryRow(ctx, query, a.UserID, a.Kind, a.SubjectID).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *calendarRepo) CountActivitiesByDay(ctx context.Context, userID string, since time.Time) ([]model.ActivityDay, error) {
	query := `
		SELECT (created_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)
		FROM activities
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query activity counts: %w", err)
	}
	defer rows.Close()

	days := []model.ActivityDay{}
	for rows.Next() {
		var d model.ActivityDay
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan activity count: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
