package dto

import "time"

// ChapterCreateDTO is used for incoming chapter creation requests
type ChapterCreateDTO struct {
	Title string `json:"title" validate:"required,max=200"`
}

// ChapterUpdateDTO is used for incoming chapter update requests
type ChapterUpdateDTO struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	VideoURL    *string `json:"video_url,omitempty" validate:"omitempty,url"`
	IsFree      *bool   `json:"is_free,omitempty"`
}

type ChapterResponseDTO struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url"`
	Position    int       `json:"position"`
	IsPublished bool      `json:"is_published"`
	IsFree      bool      `json:"is_free"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChapterDetailResponseDTO is a chapter page with its sections
type ChapterDetailResponseDTO struct {
	ChapterResponseDTO
	Sections      []SectionResponseDTO `json:"sections"`
	NextChapterID *string              `json:"next_chapter_id"`
}

// SectionCreateDTO is used for incoming section creation requests
type SectionCreateDTO struct {
	Title string `json:"title" validate:"required,max=200"`
}

// SectionUpdateDTO is used for incoming section update requests
type SectionUpdateDTO struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content,omitempty"`
}

type SectionResponseDTO struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
