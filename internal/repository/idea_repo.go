package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IdeaRepository interface {
	CreateIdea(ctx context.Context, i *model.Idea) error
	GetIdeaByID(ctx context.Context, ideaID string) (*model.Idea, error)
	ListIdeas(ctx context.Context, userID string) ([]model.Idea, error)
	CountIdeas(ctx context.Context, userID string) (int, error)
	UpdateIdea(ctx context.Context, i *model.Idea) error
	DeleteIdea(ctx context.Context, ideaID string) error
}

type ideaRepo struct {
	pool *pgxpool.Pool
}

func NewIdeaRepo(pool *pgxpool.Pool) IdeaRepository {
	return &ideaRepo{pool: pool}
}

func (r *ideaRepo) CreateIdea(ctx context.Context, i *model.Idea) error {
	query := `INSERT INTO ideas (user_id, title, content) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query, i.UserID, i.Title, i.Content).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

func (r *ideaRepo) GetIdeaByID(ctx context.Context, ideaID string) (*model.Idea, error) {
	var i model.Idea
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, title, content, created_at, updated_at FROM ideas WHERE id = $1`, ideaID).
		Scan(&i.ID, &i.UserID, &i.Title, &i.Content, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch idea %s: %w", ideaID, err)
	}
	return &i, nil
}

func (r *ideaRepo) ListIdeas(ctx context.Context, userID string) ([]model.Idea, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, title, content, created_at, updated_at FROM ideas WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query ideas: %w", err)
	}
	defer rows.Close()

	ideas := []model.Idea{}
	for rows.Next() {
		var i model.Idea
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &i.Content, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		ideas = append(ideas, i)
	}
	return ideas, rows.Err()
}

func (r *ideaRepo) CountIdeas(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ideas WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ideas: %w", err)
	}
	return n, nil
}

func (r *ideaRepo) UpdateIdea(ctx context.Context, i *model.Idea) error {
	query := `UPDATE ideas SET title = $1, content = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query, i.Title, i.Content, i.ID).Scan(&i.UpdatedAt); err != nil {
		return fmt.Errorf("update idea %s: %w", i.ID, err)
	}
	return nil
}

func (r *ideaRepo) DeleteIdea(ctx context.Context, ideaID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, ideaID); err != nil {
		return fmt.Errorf("delete idea %s: %w", ideaID, err)
	}
	return nil
}
