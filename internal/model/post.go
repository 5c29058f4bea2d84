package model

import "time"

const (
	ReactionLike       = "like"
	ReactionLove       = "love"
	ReactionInsightful = "insightful"
	ReactionFunny      = "funny"
)

type Post struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	ImageURL    string    `db:"image_url"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// Computed at query time
	AuthorName   string `db:"author_name"`
	CommentCount int    `db:"comment_count"`
}

type Comment struct {
	ID         string    `db:"id"`
	PostID     string    `db:"post_id"`
	UserID     string    `db:"user_id"`
	Content    string    `db:"content"`
	AuthorName string    `db:"author_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type Reply struct {
	ID            string    `db:"id"`
	CommentID     string    `db:"comment_id"`
	ParentReplyID *string   `db:"parent_reply_id"`
	UserID        string    `db:"user_id"`
	Content       string    `db:"content"`
	AuthorName    string    `db:"author_name"`
	CreatedAt     time.Time `db:"created_at"`
}

type Reaction struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

type Idea struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
