package service

import (
	"context"
	"testing"
	"time"

	"learnhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(time.Date(2024, 12, 15, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestCreateEventRejectsInvertedRange(t *testing.T) {
	svc := NewCalendarService(&fakeCalendarRepo{})
	start := time.Now()
	_, err := svc.CreateEvent(context.Background(), "u1", EventInput{Title: "x", StartsAt: start, EndsAt: start.Add(-time.Minute)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestActivityByDayFillsGaps(t *testing.T) {
	repo := &fakeCalendarRepo{days: []model.ActivityDay{
		{Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), Count: 2},
		{Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Count: 5},
	}}
	svc := &calendarService{repo: repo, now: func() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }}

	days, err := svc.ActivityByDay(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), repo.since)
	require.Len(t, days, 3)
	assert.Equal(t, []int{0, 2, 5}, []int{days[0].Count, days[1].Count, days[2].Count})
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), days[2].Date)
}

func TestActivityByDayLimits(t *testing.T) {
	repo := &fakeCalendarRepo{}
	svc := &calendarService{repo: repo, now: time.Now}

	days, err := svc.ActivityByDay(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, days, DefaultActivityDays)

	_, err = svc.ActivityByDay(context.Background(), "u1", MaxActivityDays+1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
