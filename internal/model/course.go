package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// Course is owned by its author (UserID). Price is null until the author sets it.
type Course struct {
	ID          string              `db:"id"`
	UserID      string              `db:"user_id"`
	Title       string              `db:"title"`
	Description string              `db:"description"`
	ImageURL    string              `db:"image_url"`
	Price       decimal.NullDecimal `db:"price"`
	CategoryID  *string             `db:"category_id"`
	IsPublished bool                `db:"is_published"`
	CreatedAt   time.Time           `db:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at"`
}

// IsFree reports whether enrolling requires no payment.
func (c *Course) IsFree() bool {
	return !c.Price.Valid || c.Price.Decimal.IsZero()
}

// CourseSummary is a catalog row with aggregate counts.
type CourseSummary struct {
	Course
	CategoryName string `db:"category_name"`
	ChapterCount int    `db:"chapter_count"`
	AuthorName   string `db:"author_name"`
}

type LearningObjective struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	Text      string    `db:"text"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

type Chapter struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	VideoURL    string    `db:"video_url"`
	Position    int       `db:"position"`
	IsPublished bool      `db:"is_published"`
	IsFree      bool      `db:"is_free"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Section struct {
	ID        string    `db:"id"`
	ChapterID string    `db:"chapter_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PositionUpdate assigns a new position to a row identified by ID.
type PositionUpdate struct {
	ID       string
	Position int
}

// Purchase grants a user access to a paid course.
type Purchase struct {
	ID              string          `db:"id"`
	UserID          string          `db:"user_id"`
	CourseID        string          `db:"course_id"`
	Amount          decimal.Decimal `db:"amount"`
	StripeSessionID *string         `db:"stripe_session_id"`
	CreatedAt       time.Time       `db:"created_at"`
}

type UserProgress struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ChapterID   string    `db:"chapter_id"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CourseRevenue aggregates purchases for one course.
type CourseRevenue struct {
	CourseID string          `db:"course_id"`
	Title    string          `db:"title"`
	Total    decimal.Decimal `db:"total"`
	Sales    int             `db:"sales"`
}
