package model

import "time"

const (
	ActivityCourseCreated    = "course_created"
	ActivityChapterCompleted = "chapter_completed"
	ActivityPostCreated      = "post_created"
	ActivityCommentCreated   = "comment_created"
)

type CalendarEvent struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	StartsAt    time.Time `db:"starts_at"`
	EndsAt      time.Time `db:"ends_at"`
	AllDay      bool      `db:"all_day"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Activity struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Kind      string    `db:"kind"`
	SubjectID string    `db:"subject_id"`
	CreatedAt time.Time `db:"created_at"`
}

// ActivityDay is the number of activities recorded on one calendar day (UTC).
type ActivityDay struct {
	Date  time.Time `db:"day"`
	Count int       `db:"count"`
}
