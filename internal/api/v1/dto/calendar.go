package dto

import "time"

// EventCreateDTO is used for incoming calendar event requests
type EventCreateDTO struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
	AllDay      bool      `json:"all_day,omitempty"`
}

// EventUpdateDTO is used for incoming calendar event updates
type EventUpdateDTO struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	AllDay      *bool      `json:"all_day,omitempty"`
}

type EventResponseDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	AllDay      bool      `json:"all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActivityDayDTO is the activity count for one UTC day
type ActivityDayDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
