package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChapterRepository interface {
	CreateChapter(ctx context.Context, ch *model.Chapter) error
	GetChapterByID(ctx context.Context, chapterID string) (*model.Chapter, error)
	ListChapters(ctx context.Context, courseID string, publishedOnly bool) ([]model.Chapter, error)
	UpdateChapter(ctx context.Context, ch *model.Chapter) error
	DeleteChapter(ctx context.Context, chapterID string) error
	SetChapterPublished(ctx context.Context, chapterID string, published bool) error
	CountPublishedChapters(ctx context.Context, courseID string) (int, error)
	UpdateChapterPosition(ctx context.Context, chapterID string, position int) error

	CreateSection(ctx context.Context, s *model.Section) error
	GetSectionByID(ctx context.Context, sectionID string) (*model.Section, error)
	ListSections(ctx context.Context, chapterID string) ([]model.Section, error)
	UpdateSection(ctx context.Context, s *model.Section) error
	DeleteSection(ctx context.Context, sectionID string) error
	ReorderSections(ctx context.Context, chapterID string, updates []model.PositionUpdate) error
}

type chapterRepo struct {
	pool *pgxpool.Pool
}

func NewChapterRepo(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepo{pool: pool}
}

const chapterColumns = `id, course_id, title, description, video_url, position, is_published, is_free, created_at, updated_at`

func chapterScanTargets(ch *model.Chapter) []any {
	return []any{&ch.ID, &ch.CourseID, &ch.Title, &ch.Description, &ch.VideoURL, &ch.Position, &ch.IsPublished, &ch.IsFree, &ch.CreatedAt, &ch.UpdatedAt}
}

// CreateChapter appends the chapter at the end of the course.
func (r *chapterRepo) CreateChapter(ctx context.Context, ch *model.Chapter) error {
	query := `
		INSERT INTO chapters (course_id, title, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM chapters WHERE course_id = $1))
		RETURNING ` + chapterColumns
	if err := r.pool.QueryRow(ctx, query, ch.CourseID, ch.Title).Scan(chapterScanTargets(ch)...); err != nil {
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

func (r *chapterRepo) GetChapterByID(ctx context.Context, chapterID string) (*model.Chapter, error) {
	var ch model.Chapter
	if err := r.pool.QueryRow(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = $1`, chapterID).Scan(chapterScanTargets(&ch)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch chapter %s: %w", chapterID, err)
	}
	return &ch, nil
}

func (r *chapterRepo) ListChapters(ctx context.Context, courseID string, publishedOnly bool) ([]model.Chapter, error) {
	query := `
		SELECT ` + chapterColumns + `
		FROM chapters
		WHERE course_id = $1 AND (NOT $2 OR is_published)
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, courseID, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	chapters := []model.Chapter{}
	for rows.Next() {
		var ch model.Chapter
		if err := rows.Scan(chapterScanTargets(&ch)...); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

func (r *chapterRepo) UpdateChapter(ctx context.Context, ch *model.Chapter) error {
	query := `
		UPDATE chapters
		SET title = $1, description = $2, video_url = $3, is_free = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, ch.Title, ch.Description, ch.VideoURL, ch.IsFree, ch.ID).Scan(&ch.UpdatedAt); err != nil {
		return fmt.Errorf("update chapter %s: %w", ch.ID, err)
	}
	return nil
}

func (r *chapterRepo) DeleteChapter(ctx context.Context, chapterID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, chapterID); err != nil {
		return fmt.Errorf("delete chapter %s: %w", chapterID, err)
	}
	return nil
}

func (r *chapterRepo) SetChapterPublished(ctx context.Context, chapterID string, published bool) error {
	if _, err := r.pool.Exec(ctx, `UPDATE chapters SET is_published = $1, updated_at = NOW() WHERE id = $2`, published, chapterID); err != nil {
		return fmt.Errorf("set chapter %s published=%t: %w", chapterID, published, err)
	}
	return nil
}

func (r *chapterRepo) CountPublishedChapters(ctx context.Context, courseID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chapters WHERE course_id = $1 AND is_published`, courseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count published chapters: %w", err)
	}
	return n, nil
}

func (r *chapterRepo) UpdateChapterPosition(ctx context.Context, chapterID string, position int) error {
	if _, err := r.pool.Exec(ctx, `UPDATE chapters SET position = $1, updated_at = NOW() WHERE id = $2`, position, chapterID); err != nil {
		return fmt.Errorf("update chapter position %s: %w", chapterID, err)
	}
	return nil
}

const sectionColumns = `id, chapter_id, title, content, position, created_at, updated_at`

func sectionScanTargets(s *model.Section) []any {
	return []any{&s.ID, &s.ChapterID, &s.Title, &s.Content, &s.Position, &s.CreatedAt, &s.UpdatedAt}
}

func (r *chapterRepo) CreateSection(ctx context.Context, s *model.Section) error {
	query := `
		INSERT INTO sections (chapter_id, title, content, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position) + 1, 0) FROM sections WHERE chapter_id = $1))
		RETURNING ` + sectionColumns
	if err := r.pool.QueryRow(ctx, query, s.ChapterID, s.Title, s.Content).Scan(sectionScanTargets(s)...); err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

func (r *chapterRepo) GetSectionByID(ctx context.Context, sectionID string) (*model.Section, error) {
	var s model.Section
	if err := r.pool.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, sectionID).Scan(sectionScanTargets(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch section %s: %w", sectionID, err)
	}
	return &s, nil
}

func (r *chapterRepo) ListSections(ctx context.Context, chapterID string) ([]model.Section, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sectionColumns+` FROM sections WHERE chapter_id = $1 ORDER BY position ASC`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	sections := []model.Section{}
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(sectionScanTargets(&s)...); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *chapterRepo) UpdateSection(ctx context.Context, s *model.Section) error {
	query := `UPDATE sections SET title = $1, content = $2, updated_at = NOW() WHERE id = $3 RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query, s.Title, s.Content, s.ID).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("update section %s: %w", s.ID, err)
	}
	return nil
}

func (r *chapterRepo) DeleteSection(ctx context.Context, sectionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sections WHERE id = $1`, sectionID); err != nil {
		return fmt.Errorf("delete section %s: %w", sectionID, err)
	}
	return nil
}

// ReorderSections applies every position update in one transaction. Rows that
// do not belong to chapterID abort the whole batch.
func (r *chapterRepo) ReorderSections(ctx context.Context, chapterID string, updates []model.PositionUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx, `UPDATE sections SET position = $1, updated_at = NOW() WHERE id = $2 AND chapter_id = $3`, u.Position, u.ID, chapterID)
		if err != nil {
			return fmt.Errorf("update section position %s: %w", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("section %s not in chapter %s: %w", u.ID, chapterID, ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder tx: %w", err)
	}
	return nil
}
