package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReactionCount is the number of reactions of one type on a post.
type ReactionCount struct {
	Type  string
	Count int
}

type PostRepository interface {
	CreatePost(ctx context.Context, p *model.Post) error
	GetPostByID(ctx context.Context, postID string) (*model.Post, error)
	ListPublishedPosts(ctx context.Context, limit, offset int) ([]model.Post, error)
	CountPostsByUserID(ctx context.Context, userID string, publishedOnly bool) (int, error)
	UpdatePost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, postID string) error

	CreateComment(ctx context.Context, c *model.Comment) error
	GetCommentByID(ctx context.Context, commentID string) (*model.Comment, error)
	ListComments(ctx context.Context, postID string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, c *model.Comment) error
	DeleteComment(ctx context.Context, commentID string) error

	CreateReply(ctx context.Context, r *model.Reply) error
	GetReplyByID(ctx context.Context, replyID string) (*model.Reply, error)
	ListRepliesByPostID(ctx context.Context, postID string) ([]model.Reply, error)
	DeleteReply(ctx context.Context, replyID string) error

	GetReaction(ctx context.Context, postID, userID string) (*model.Reaction, error)
	UpsertReaction(ctx context.Context, r *model.Reaction) error
	DeleteReaction(ctx context.Context, postID, userID string) error
	CountReactions(ctx context.Context, postID string) ([]ReactionCount, error)
	CountReactionsForPosts(ctx context.Context, postIDs []string) (map[string][]ReactionCount, error)
}

type postRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) PostRepository {
	return &postRepo{pool: pool}
}

const postSelect = `
	SELECT p.id, p.user_id, p.title, p.content, p.image_url, p.is_published, p.created_at, p.updated_at,
	       u.name AS author_name,
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

func postScanTargets(p *model.Post) []any {
	return []any{&p.ID, &p.UserID, &p.Title, &p.Content, &p.ImageURL, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName, &p.CommentCount}
}

func (r *postRepo) CreatePost(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (user_id, title, content, image_url, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, p.UserID, p.Title, p.Content, p.ImageURL, p.IsPublished).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepo) GetPostByID(ctx context.Context, postID string) (*model.Post, error) {
	var p model.Post
	if err := r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, postID).Scan(postScanTargets(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch post %s: %w", postID, err)
	}
	return &p, nil
}

func (r *postRepo) ListPublishedPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, postSelect+` WHERE p.is_published ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(postScanTargets(&p)...); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepo) CountPostsByUserID(ctx context.Context, userID string, publishedOnly bool) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1 AND (NOT $2 OR is_published)`, userID, publishedOnly).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *postRepo) UpdatePost(ctx context.Context, p *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, image_url = $3, is_published = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, p.Title, p.Content, p.ImageURL, p.IsPublished, p.ID).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("update post %s: %w", p.ID, err)
	}
	return nil
}

func (r *postRepo) DeletePost(ctx context.Context, postID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("delete post %s: %w", postID, err)
	}
	return nil
}

func (r *postRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	query := `
		WITH inserted AS (
			INSERT INTO comments (post_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at, user_id
		)
		SELECT i.id, i.created_at, i.updated_at, u.name
		FROM inserted i JOIN users u ON u.id = i.user_id
	`
	if err := r.pool.QueryRow(ctx, query, c.PostID, c.UserID, c.Content).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *postRepo) GetCommentByID(ctx context.Context, commentID string) (*model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, u.name, c.created_at, c.updated_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	var c model.Comment
	if err := r.pool.QueryRow(ctx, query, commentID).Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.AuthorName, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch comment %s: %w", commentID, err)
	}
	return &c, nil
}

func (r *postRepo) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, u.name, c.created_at, c.updated_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.AuthorName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *postRepo) UpdateComment(ctx context.Context, c *model.Comment) error {
	if err := r.pool.QueryRow(ctx, `UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`, c.Content, c.ID).Scan(&c.UpdatedAt); err != nil {
		return fmt.Errorf("update comment %s: %w", c.ID, err)
	}
	return nil
}

func (r *postRepo) DeleteComment(ctx context.Context, commentID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, err)
	}
	return nil
}

func (r *postRepo) CreateReply(ctx context.Context, rp *model.Reply) error {
	query := `
		WITH inserted AS (
			INSERT INTO replies (comment_id, parent_reply_id, user_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, user_id
		)
		SELECT i.id, i.created_at, u.name
		FROM inserted i JOIN users u ON u.id = i.user_id
	`
	if err := r.pool.QueryRow(ctx, query, rp.CommentID, rp.ParentReplyID, rp.UserID, rp.Content).Scan(&rp.ID, &rp.CreatedAt, &rp.AuthorName); err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}
	return nil
}

func (r *postRepo) GetReplyByID(ctx context.Context, replyID string) (*model.Reply, error) {
	query := `
		SELECT r.id, r.comment_id, r.parent_reply_id, r.user_id, r.content, u.name, r.created_at
		FROM replies r JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	var rp model.Reply
	if err := r.pool.QueryRow(ctx, query, replyID).Scan(&rp.ID, &rp.CommentID, &rp.ParentReplyID, &rp.UserID, &rp.Content, &rp.AuthorName, &rp.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch reply %s: %w", replyID, err)
	}
	return &rp, nil
}

func (r *postRepo) ListRepliesByPostID(ctx context.Context, postID string) ([]model.Reply, error) {
	query := `
		SELECT r.id, r.comment_id, r.parent_reply_id, r.user_id, r.content, u.name, r.created_at
		FROM replies r
		JOIN comments c ON c.id = r.comment_id
		JOIN users u ON u.id = r.user_id
		WHERE c.post_id = $1
		ORDER BY r.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	replies := []model.Reply{}
	for rows.Next() {
		var rp model.Reply
		if err := rows.Scan(&rp.ID, &rp.CommentID, &rp.ParentReplyID, &rp.UserID, &rp.Content, &rp.AuthorName, &rp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, rp)
	}
	return replies, rows.Err()
}

func (r *postRepo) DeleteReply(ctx context.Context, replyID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM replies WHERE id = $1`, replyID); err != nil {
		return fmt.Errorf("delete reply %s: %w", replyID, err)
	}
	return nil
}

func (r *postRepo) GetReaction(ctx context.Context, postID, userID string) (*model.Reaction, error) {
	var re model.Reaction
	err := r.pool.QueryRow(ctx, `SELECT id, post_id, user_id, type, created_at FROM reactions WHERE post_id = $1 AND user_id = $2`, postID, userID).
		Scan(&re.ID, &re.PostID, &re.UserID, &re.Type, &re.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch reaction: %w", err)
	}
	return &re, nil
}

func (r *postRepo) UpsertReaction(ctx context.Context, re *model.Reaction) error {
	query := `
		INSERT INTO reactions (post_id, user_id, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO UPDATE SET type = EXCLUDED.type
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query, re.PostID, re.UserID, re.Type).Scan(&re.ID, &re.CreatedAt); err != nil {
		return fmt.Errorf("upsert reaction: %w", err)
	}
	return nil
}

func (r *postRepo) DeleteReaction(ctx context.Context, postID, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM reactions WHERE post_id = $1 AND user_id = $2`, postID, userID); err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return nil
}

func (r *postRepo) CountReactions(ctx context.Context, postID string) ([]ReactionCount, error) {
	counts, err := r.CountReactionsForPosts(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	return counts[postID], nil
}

func (r *postRepo) CountReactionsForPosts(ctx context.Context, postIDs []string) (map[string][]ReactionCount, error) {
	counts := make(map[string][]ReactionCount, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT post_id, type, COUNT(*)
		FROM reactions
		WHERE post_id::text = ANY($1)
		GROUP BY post_id, type
		ORDER BY post_id, type
	`
	rows, err := r.pool.Query(ctx, query, postIDs)
	if err != nil {
		return nil, fmt.Errorf("query reaction counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var rc ReactionCount
		if err := rows.Scan(&postID, &rc.Type, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan reaction count: %w", err)
		}
		counts[postID] = append(counts[postID], rc)
	}
	return counts, rows.Err()
}
