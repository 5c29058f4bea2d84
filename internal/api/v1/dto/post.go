package dto

import "time"

// PostCreateDTO is used for incoming post creation requests
type PostCreateDTO struct {
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsPublished bool   `json:"is_published,omitempty"`
}

// PostUpdateDTO is used for incoming post update requests
type PostUpdateDTO struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content     *string `json:"content,omitempty"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

type ReactionCountDTO struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// PostSummaryResponseDTO is a feed entry; the full content is left out
type PostSummaryResponseDTO struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	AuthorName   string             `json:"author_name"`
	Title        string             `json:"title"`
	Excerpt      string             `json:"excerpt"`
	ImageURL     string             `json:"image_url"`
	CommentCount int                `json:"comment_count"`
	Reactions    []ReactionCountDTO `json:"reactions"`
	CreatedAt    time.Time          `json:"created_at"`
}

type PostResponseDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AuthorName   string    `json:"author_name"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"image_url"`
	IsPublished  bool      `json:"is_published"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PostDetailResponseDTO is a post page with nested comments
type PostDetailResponseDTO struct {
	PostResponseDTO
	Comments       []CommentResponseDTO `json:"comments"`
	Reactions      []ReactionCountDTO   `json:"reactions"`
	ViewerReaction *string              `json:"viewer_reaction"`
}

// CommentCreateDTO is used for comment create and update requests
type CommentCreateDTO struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CommentResponseDTO struct {
	ID         string             `json:"id"`
	PostID     string             `json:"post_id"`
	UserID     string             `json:"user_id"`
	AuthorName string             `json:"author_name"`
	Content    string             `json:"content"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Replies    []ReplyResponseDTO `json:"replies"`
}

// ReplyCreateDTO is used for incoming reply requests
type ReplyCreateDTO struct {
	Content       string  `json:"content" validate:"required,max=5000"`
	ParentReplyID *string `json:"parent_reply_id,omitempty" validate:"omitempty,uuid"`
}

type ReplyResponseDTO struct {
	ID            string             `json:"id"`
	CommentID     string             `json:"comment_id"`
	ParentReplyID *string            `json:"parent_reply_id"`
	UserID        string             `json:"user_id"`
	AuthorName    string             `json:"author_name"`
	Content       string             `json:"content"`
	CreatedAt     time.Time          `json:"created_at"`
	Replies       []ReplyResponseDTO `json:"replies"`
}

// ReactionDTO toggles the viewer's reaction
type ReactionDTO struct {
	Type string `json:"type" validate:"required,oneof=like love insightful funny"`
}

type ReactionsResponseDTO struct {
	Counts         []ReactionCountDTO `json:"counts"`
	ViewerReaction *string            `json:"viewer_reaction"`
}
