package service

import (
	"context"
	"fmt"
	"strings"

	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
)

// ReactionTypes are the accepted reaction kinds.
var ReactionTypes = []string{model.ReactionLike, model.ReactionLove, model.ReactionInsightful, model.ReactionFunny}

// PostSummary is a feed entry.
type PostSummary struct {
	Post      model.Post
	Excerpt   string
	Reactions []repository.ReactionCount
}

// PostDetail is a post page with its discussion.
type PostDetail struct {
	Post           *model.Post
	Comments       []CommentThread
	Reactions      []repository.ReactionCount
	ViewerReaction string
}

// ReactionState is the post's reactions after a toggle or read.
type ReactionState struct {
	Counts         []repository.ReactionCount
	ViewerReaction string
}

type PostInput struct {
	Title       string
	Content     string
	ImageURL    string
	IsPublished bool
}

type PostUpdate struct {
	Title       *string
	Content     *string
	ImageURL    *string
	IsPublished *bool
}

type PostService interface {
	ListPosts(ctx context.Context, limit, offset int) ([]PostSummary, error)
	CreatePost(ctx context.Context, userID string, in PostInput) (*model.Post, error)
	GetPost(ctx context.Context, viewerID, postID string) (*PostDetail, error)
	UpdatePost(ctx context.Context, userID, postID string, in PostUpdate) (*model.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error

	CreateComment(ctx context.Context, userID, postID, content string) (*model.Comment, error)
	UpdateComment(ctx context.Context, userID, commentID, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
	CreateReply(ctx context.Context, userID, commentID, content string, parentReplyID *string) (*model.Reply, error)
	DeleteReply(ctx context.Context, userID, replyID string) error

	ToggleReaction(ctx context.Context, userID, postID, reactionType string) (*ReactionState, error)
	GetReactions(ctx context.Context, viewerID, postID string) (*ReactionState, error)
}

type postService struct {
	repo     repository.PostRepository
	uploads  UploadService
	activity ActivityRecorder
	logger   zerolog.Logger
}

func NewPostService(repo repository.PostRepository, uploads UploadService, activity ActivityRecorder, logger zerolog.Logger) PostService {
	return &postService{repo: repo, uploads: uploads, activity: activity, logger: logger.With().Str("service", "PostService").Logger()}
}

// visiblePost returns a published post, or an unpublished one to its author.
func (s *postService) visiblePost(ctx context.Context, viewerID, postID string) (*model.Post, error) {
	p, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.IsPublished && p.UserID != viewerID) {
		return nil, ErrPostNotFound
	}
	return p, nil
}

func (s *postService) ownedPost(ctx context.Context, userID, postID string) (*model.Post, error) {
	p, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	if p.UserID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *postService) ListPosts(ctx context.Context, limit, offset int) ([]PostSummary, error) {
	posts, err := s.repo.ListPublishedPosts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	counts, err := s.repo.CountReactionsForPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		reactions := counts[p.ID]
		if reactions == nil {
			reactions = []repository.ReactionCount{}
		}
		out = append(out, PostSummary{Post: p, Excerpt: Excerpt(p.Content, ExcerptLength), Reactions: reactions})
	}
	return out, nil
}

func (s *postService) CreatePost(ctx context.Context, userID string, in PostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	if err := s.uploads.CheckImageURL(userID, in.ImageURL); err != nil {
		return nil, err
	}
	p := &model.Post{
		UserID:      userID,
		Title:       title,
		Content:     SanitizeHTML(in.Content),
		ImageURL:    in.ImageURL,
		IsPublished: in.IsPublished,
	}
	if err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivityPostCreated, p.ID)
	return p, nil
}

func (s *postService) GetPost(ctx context.Context, viewerID, postID string) (*PostDetail, error) {
	p, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	replies, err := s.repo.ListRepliesByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	state, err := s.reactionState(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		Post:           p,
		Comments:       NestComments(comments, replies),
		Reactions:      state.Counts,
		ViewerReaction: state.ViewerReaction,
	}, nil
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID string, in PostUpdate) (*model.Post, error) {
	p, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		p.Title = title
	}
	if in.Content != nil {
		p.Content = SanitizeHTML(*in.Content)
	}
	if in.ImageURL != nil {
		if err := s.uploads.CheckImageURL(userID, *in.ImageURL); err != nil {
			return nil, err
		}
		p.ImageURL = *in.ImageURL
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	if err := s.repo.UpdatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID string) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	return s.repo.DeletePost(ctx, postID)
}

// cleanComment strips markup from user text and rejects what is left empty.
func cleanComment(content string) (string, error) {
	clean := StripHTML(content)
	if clean == "" {
		return "", invalidInput("content is required")
	}
	return clean, nil
}

func (s *postService) CreateComment(ctx context.Context, userID, postID, content string) (*model.Comment, error) {
	if _, err := s.visiblePost(ctx, userID, postID); err != nil {
		return nil, err
	}
	clean, err := cleanComment(content)
	if err != nil {
		return nil, err
	}
	c := &model.Comment{PostID: postID, UserID: userID, Content: clean}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivityCommentCreated, c.ID)
	return c, nil
}

func (s *postService) getComment(ctx context.Context, commentID string) (*model.Comment, error) {
	c, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCommentNotFound
	}
	return c, nil
}

func (s *postService) UpdateComment(ctx context.Context, userID, commentID, content string) (*model.Comment, error) {
	c, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	clean, err := cleanComment(content)
	if err != nil {
		return nil, err
	}
	c.Content = clean
	if err := s.repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment is allowed to the comment author and to the post owner.
func (s *postService) DeleteComment(ctx context.Context, userID, commentID string) error {
	c, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		p, err := s.repo.GetPostByID(ctx, c.PostID)
		if err != nil {
			return err
		}
		if p == nil || p.UserID != userID {
			return ErrForbidden
		}
	}
	return s.repo.DeleteComment(ctx, commentID)
}

func (s *postService) CreateReply(ctx context.Context, userID, commentID, content string, parentReplyID *string) (*model.Reply, error) {
	c, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, userID, c.PostID); err != nil {
		return nil, err
	}
	if parentReplyID != nil && *parentReplyID != "" {
		parent, err := s.repo.GetReplyByID(ctx, *parentReplyID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.CommentID != commentID {
			return nil, ErrReplyNotFound
		}
	} else {
		parentReplyID = nil
	}
	clean, err := cleanComment(content)
	if err != nil {
		return nil, err
	}
	r := &model.Reply{CommentID: commentID, ParentReplyID: parentReplyID, UserID: userID, Content: clean}
	if err := s.repo.CreateReply(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *postService) DeleteReply(ctx context.Context, userID, replyID string) error {
	r, err := s.repo.GetReplyByID(ctx, replyID)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrReplyNotFound
	}
	if r.UserID != userID {
		return ErrForbidden
	}
	return s.repo.DeleteReply(ctx, replyID)
}

func validReaction(t string) bool {
	for _, rt := range ReactionTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// ToggleReaction removes the viewer's reaction when it has the same type,
// replaces it when the type differs, and creates it otherwise.
func (s *postService) ToggleReaction(ctx context.Context, userID, postID, reactionType string) (*ReactionState, error) {
	if !validReaction(reactionType) {
		return nil, invalidInput("unknown reaction type %q", reactionType)
	}
	if _, err := s.visiblePost(ctx, userID, postID); err != nil {
		return nil, err
	}
	current, err := s.repo.GetReaction(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.Type == reactionType {
		if err := s.repo.DeleteReaction(ctx, postID, userID); err != nil {
			return nil, err
		}
	} else {
		r := &model.Reaction{PostID: postID, UserID: userID, Type: reactionType}
		if err := s.repo.UpsertReaction(ctx, r); err != nil {
			return nil, err
		}
	}
	return s.reactionState(ctx, userID, postID)
}

func (s *postService) GetReactions(ctx context.Context, viewerID, postID string) (*ReactionState, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	return s.reactionState(ctx, viewerID, postID)
}

func (s *postService) reactionState(ctx context.Context, viewerID, postID string) (*ReactionState, error) {
	counts, err := s.repo.CountReactions(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	if counts == nil {
		counts = []repository.ReactionCount{}
	}
	state := &ReactionState{Counts: counts}
	if viewerID != "" {
		mine, err := s.repo.GetReaction(ctx, postID, viewerID)
		if err != nil {
			return nil, err
		}
		if mine != nil {
			state.ViewerReaction = mine.Type
		}
	}
	return state, nil
}
