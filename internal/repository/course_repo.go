package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseFilter narrows the published catalog.
type CourseFilter struct {
	Query      string
	CategoryID string
}

// CourseRepository defines the interface for interacting with course data
type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) error
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	UpdateCourse(ctx context.Context, c *model.Course) error
	DeleteCourse(ctx context.Context, courseID string) error
	SetCoursePublished(ctx context.Context, courseID string, published bool) error
	GetCoursesByUserID(ctx context.Context, userID string) ([]model.CourseSummary, error)
	ListPublishedCourses(ctx context.Context, f CourseFilter) ([]model.CourseSummary, error)
	ListPublishedCoursesByUserID(ctx context.Context, userID string) ([]model.CourseSummary, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*model.Category, error)

	ListObjectives(ctx context.Context, courseID string) ([]model.LearningObjective, error)
	GetObjective(ctx context.Context, objectiveID string) (*model.LearningObjective, error)
	CreateObjective(ctx context.Context, o *model.LearningObjective) error
	DeleteObjective(ctx context.Context, objectiveID string) error
	UpdateObjectivePosition(ctx context.Context, objectiveID string, position int) error
}

type courseRepo struct {
	pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{pool: pool}
}

const courseColumns = `c.id, c.user_id, c.title, c.description, c.image_url, c.price, c.category_id, c.is_published, c.created_at, c.updated_at`

func courseScanTargets(c *model.Course) []any {
	return []any{&c.ID, &c.UserID, &c.Title, &c.Description, &c.ImageURL, &c.Price, &c.CategoryID, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt}
}

// CreateCourse inserts a new course and returns the created record
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses AS c (user_id, title)
		VALUES ($1, $2)
		RETURNING ` + courseColumns
	if err := r.pool.QueryRow(ctx, query, c.UserID, c.Title).Scan(courseScanTargets(c)...); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// GetCourseByID retrieves a course by its ID
func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	var c model.Course
	err := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, courseID).Scan(courseScanTargets(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch course %s: %w", courseID, err)
	}
	return &c, nil
}

// UpdateCourse updates the editable fields and returns updated timestamps
func (r *courseRepo) UpdateCourse(ctx context.Context, c *model.Course) error {
	query := `
		UPDATE courses
		SET title = $1, description = $2, image_url = $3, price = $4, category_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, c.Title, c.Description, c.ImageURL, c.Price, c.CategoryID, c.ID).Scan(&c.UpdatedAt); err != nil {
		return fmt.Errorf("update course %s: %w", c.ID, err)
	}
	return nil
}

func (r *courseRepo) DeleteCourse(ctx context.Context, courseID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course %s: %w", courseID, err)
	}
	return nil
}

func (r *courseRepo) SetCoursePublished(ctx context.Context, courseID string, published bool) error {
	if _, err := r.pool.Exec(ctx, `UPDATE courses SET is_published = $1, updated_at = NOW() WHERE id = $2`, published, courseID); err != nil {
		return fmt.Errorf("set course %s published=%t: %w", courseID, published, err)
	}
	return nil
}

const courseSummarySelect = `
	SELECT ` + courseColumns + `,
	       COALESCE(cat.name, '') AS category_name,
	       (SELECT COUNT(*) FROM chapters ch WHERE ch.course_id = c.id AND ch.is_published) AS chapter_count,
	       u.name AS author_name
	FROM courses c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN categories cat ON cat.id = c.category_id
`

func (r *courseRepo) querySummaries(ctx context.Context, query string, args ...any) ([]model.CourseSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	courses := []model.CourseSummary{}
	for rows.Next() {
		var s model.CourseSummary
		targets := append(courseScanTargets(&s.Course), &s.CategoryName, &s.ChapterCount, &s.AuthorName)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("course row iteration: %w", err)
	}
	return courses, nil
}

// GetCoursesByUserID lists every course authored by the user, drafts included
func (r *courseRepo) GetCoursesByUserID(ctx context.Context, userID string) ([]model.CourseSummary, error) {
	return r.querySummaries(ctx, courseSummarySelect+` WHERE c.user_id = $1 ORDER BY c.created_at DESC`, userID)
}

func (r *courseRepo) ListPublishedCourses(ctx context.Context, f CourseFilter) ([]model.CourseSummary, error) {
	query := courseSummarySelect + `
	WHERE c.is_published
	  AND ($1 = '' OR c.title ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR c.category_id::text = $2)
	ORDER BY c.created_at DESC
	`
	return r.querySummaries(ctx, query, f.Query, f.CategoryID)
}

func (r *courseRepo) ListPublishedCoursesByUserID(ctx context.Context, userID string) ([]model.CourseSummary, error) {
	return r.querySummaries(ctx, courseSummarySelect+` WHERE c.user_id = $1 AND c.is_published ORDER BY c.created_at DESC`, userID)
}

func (r *courseRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *courseRepo) GetCategoryByID(ctx context.Context, categoryID string) (*model.Category, error) {
	var c model.Category
	if err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, categoryID).Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch category %s: %w", categoryID, err)
	}
	return &c, nil
}

func (r *courseRepo) ListObjectives(ctx context.Context, courseID string) ([]model.LearningObjective, error) {
	query := `
		SELECT id, course_id, text, position, created_at
		FROM learning_objectives
		WHERE course_id = $1
		ORDER BY position ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("query learning objectives: %w", err)
	}
	defer rows.Close()

	objectives := []model.LearningObjective{}
	for rows.Next() {
		var o model.LearningObjective
		if err := rows.Scan(&o.ID, &o.CourseID, &o.Text, &o.Position, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan learning objective: %w", err)
		}
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}

func (r *courseRepo) GetObjective(ctx context.Context, objectiveID string) (*model.LearningObjective, error) {
	var o model.LearningObjective
	err := r.pool.QueryRow(ctx, `SELECT id, course_id, text, position, created_at FROM learning_objectives WHERE id = $1`, objectiveID).
		Scan(&o.ID, &o.CourseID, &o.Text, &o.Position, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch learning objective %s: %w", objectiveID, err)
	}
	return &o, nil
}

func (r *courseRepo) CreateObjective(ctx context.Context, o *model.LearningObjective) error {
	query := `
		INSERT INTO learning_objectives (course_id, text, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM learning_objectives WHERE course_id = $1))
		RETURNING id, position, created_at
	`
	if err := r.pool.QueryRow(ctx, query, o.CourseID, o.Text).Scan(&o.ID, &o.Position, &o.CreatedAt); err != nil {
		return fmt.Errorf("insert learning objective: %w", err)
	}
	return nil
}

func (r *courseRepo) DeleteObjective(ctx context.Context, objectiveID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM learning_objectives WHERE id = $1`, objectiveID); err != nil {
		return fmt.Errorf("delete learning objective %s: %w", objectiveID, err)
	}
	return nil
}

func (r *courseRepo) UpdateObjectivePosition(ctx context.Context, objectiveID string, position int) error {
	if _, err := r.pool.Exec(ctx, `UPDATE learning_objectives SET position = $1 WHERE id = $2`, position, objectiveID); err != nil {
		return fmt.Errorf("update learning objective position %s: %w", objectiveID, err)
	}
	return nil
}
