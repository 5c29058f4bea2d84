package dto

import "time"

type IdeaCreateDTO struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
}

type IdeaUpdateDTO struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content,omitempty"`
}

type IdeaResponseDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
