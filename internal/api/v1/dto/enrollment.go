package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutResponseDTO carries either an immediate enrollment or a payment URL
type CheckoutResponseDTO struct {
	Enrolled bool   `json:"enrolled,omitempty"`
	URL      string `json:"url,omitempty"`
}

type EnrollmentResponseDTO struct {
	Course            CourseSummaryResponseDTO `json:"course"`
	PurchasedAt       time.Time                `json:"purchased_at"`
	CompletedChapters int                      `json:"completed_chapters"`
	Percentage        float64                  `json:"percentage"`
}

// ProgressUpdateDTO marks a chapter complete or incomplete
type ProgressUpdateDTO struct {
	IsCompleted *bool `json:"is_completed" validate:"required"`
}

type ProgressResponseDTO struct {
	ChapterID   string    `json:"chapter_id"`
	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CourseProgressResponseDTO struct {
	CourseID   string  `json:"course_id"`
	Percentage float64 `json:"percentage"`
}

type DashboardResponseDTO struct {
	Completed      []EnrollmentResponseDTO `json:"completed"`
	InProgress     []EnrollmentResponseDTO `json:"in_progress"`
	PostCount      int                     `json:"post_count"`
	IdeaCount      int                     `json:"idea_count"`
	UpcomingEvents int                     `json:"upcoming_events"`
}

type CourseRevenueResponseDTO struct {
	CourseID string          `json:"course_id"`
	Title    string          `json:"title"`
	Total    decimal.Decimal `json:"total"`
	Sales    int             `json:"sales"`
}

type AnalyticsResponseDTO struct {
	Courses      []CourseRevenueResponseDTO `json:"courses"`
	TotalRevenue decimal.Decimal            `json:"total_revenue"`
	TotalSales   int                        `json:"total_sales"`
}
