package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileLinkRepository interface {
	ListLinks(ctx context.Context, userID string) ([]model.ProfileLink, error)
	GetLink(ctx context.Context, linkID string) (*model.ProfileLink, error)
	CreateLink(ctx context.Context, l *model.ProfileLink) error
	UpdateLink(ctx context.Context, l *model.ProfileLink) error
	DeleteLink(ctx context.Context, linkID string) error
	UpdateLinkPosition(ctx context.Context, linkID string, position int) error
}

type profileLinkRepo struct {
	pool *pgxpool.Pool
}

func NewProfileLinkRepo(pool *pgxpool.Pool) ProfileLinkRepository {
	return &profileLinkRepo{pool: pool}
}

func (r *profileLinkRepo) ListLinks(ctx context.Context, userID string) ([]model.ProfileLink, error) {
	query := `
		SELECT id, user_id, label, url, position, created_at, updated_at
		FROM profile_links
		WHERE user_id = $1
		ORDER BY position ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query profile links: %w", err)
	}
	defer rows.Close()

	links := []model.ProfileLink{}
	for rows.Next() {
		var l model.ProfileLink
		if err := rows.Scan(&l.ID, &l.UserID, &l.Label, &l.URL, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *profileLinkRepo) GetLink(ctx context.Context, linkID string) (*model.ProfileLink, error) {
	query := `
		SELECT id, user_id, label, url, position, created_at, updated_at
		FROM profile_links
		WHERE id = $1
	`
	var l model.ProfileLink
	err := r.pool.QueryRow(ctx, query, linkID).Scan(&l.ID, &l.UserID, &l.Label, &l.URL, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch profile link %s: %w", linkID, err)
	}
	return &l, nil
}

// CreateLink appends the link after the user's existing links.
func (r *profileLinkRepo) CreateLink(ctx context.Context, l *model.ProfileLink) error {
	query := `
		INSERT INTO profile_links (user_id, label, url, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM profile_links WHERE user_id = $1))
		RETURNING id, position, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, l.UserID, l.Label, l.URL).Scan(&l.ID, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("insert profile link: %w", err)
	}
	return nil
}

func (r *profileLinkRepo) UpdateLink(ctx context.Context, l *model.ProfileLink) error {
	query := `UPDATE profile_links SET label = $1, url = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query, l.Label, l.URL, l.ID).Scan(&l.UpdatedAt); err != nil {
		return fmt.Errorf("update profile link %s: %w", l.ID, err)
	}
	return nil
}

func (r *profileLinkRepo) DeleteLink(ctx context.Context, linkID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM profile_links WHERE id = $1`, linkID); err != nil {
		return fmt.Errorf("delete profile link %s: %w", linkID, err)
	}
	return nil
}

func (r *profileLinkRepo) UpdateLinkPosition(ctx context.Context, linkID string, position int) error {
	if _, err := r.pool.Exec(ctx, `UPDATE profile_links SET position = $1, updated_at = NOW() WHERE id = $2`, position, linkID); err != nil {
		return fmt.Errorf("update profile link position %s: %w", linkID, err)
	}
	return nil
}
