package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseCreateDTO is used for incoming course creation requests
type CourseCreateDTO struct {
	Title string `json:"title" validate:"required,max=200"`
}

// CourseUpdateDTO is used for incoming course update requests
type CourseUpdateDTO struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
}

// CourseResponseDTO is returned in API responses for courses
type CourseResponseDTO struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id"`
	IsPublished bool             `json:"is_published"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CourseSummaryResponseDTO is a catalog entry
type CourseSummaryResponseDTO struct {
	CourseResponseDTO
	CategoryName string `json:"category_name"`
	ChapterCount int    `json:"chapter_count"`
	AuthorName   string `json:"author_name"`
}

// CourseDetailResponseDTO is a course page
type CourseDetailResponseDTO struct {
	CourseResponseDTO
	Category   *CategoryResponseDTO   `json:"category"`
	Chapters   []ChapterResponseDTO   `json:"chapters"`
	Objectives []ObjectiveResponseDTO `json:"objectives"`
	IsOwner    bool                   `json:"is_owner"`
	Purchased  bool                   `json:"purchased"`
}

type CategoryResponseDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ObjectiveCreateDTO is used for incoming learning objective requests
type ObjectiveCreateDTO struct {
	Text string `json:"text" validate:"required,max=500"`
}

type ObjectiveResponseDTO struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}
