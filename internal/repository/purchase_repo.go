package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrolledCourse is a purchased course with the buyer's chapter progress.
type EnrolledCourse struct {
	model.CourseSummary
	PurchasedAt       time.Time
	CompletedChapters int
}

type PurchaseRepository interface {
	// CreatePurchase inserts the purchase; created is false when the user already owned the course.
	CreatePurchase(ctx context.Context, p *model.Purchase) (created bool, err error)
	GetPurchase(ctx context.Context, userID, courseID string) (*model.Purchase, error)
	ListEnrolledCourses(ctx context.Context, userID string) ([]EnrolledCourse, error)
	RevenueByAuthor(ctx context.Context, authorID string) ([]model.CourseRevenue, error)

	UpsertProgress(ctx context.Context, p *model.UserProgress) error
	CountCompletedChapters(ctx context.Context, userID, courseID string) (int, error)
}

type purchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) CreatePurchase(ctx context.Context, p *model.Purchase) (bool, error) {
	query := `
		INSERT INTO purchases (user_id, course_id, amount, stripe_session_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO NOTHING
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, p.UserID, p.CourseID, p.Amount, p.StripeSessionID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert purchase: %w", err)
	}
	return true, nil
}

func (r *purchaseRepo) GetPurchase(ctx context.Context, userID, courseID string) (*model.Purchase, error) {
	query := `
		SELECT id, user_id, course_id, amount, stripe_session_id, created_at
		FROM purchases
		WHERE user_id = $1 AND course_id = $2
	`
	var p model.Purchase
	err := r.pool.QueryRow(ctx, query, userID, courseID).Scan(&p.ID, &p.UserID, &p.CourseID, &p.Amount, &p.StripeSessionID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch purchase: %w", err)
	}
	return &p, nil
}

func (r *purchaseRepo) ListEnrolledCourses(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	query := `
		SELECT ` + courseColumns + `,
		       COALESCE(cat.name, '') AS category_name,
		       (SELECT COUNT(*) FROM chapters ch WHERE ch.course_id = c.id AND ch.is_published) AS chapter_count,
		       u.name AS author_name,
		       p.created_at AS purchased_at,
		       (SELECT COUNT(*)
		          FROM user_progress up
		          JOIN chapters ch ON ch.id = up.chapter_id
		         WHERE up.user_id = p.user_id AND ch.course_id = c.id
		           AND ch.is_published AND up.is_completed) AS completed_chapters
		FROM purchases p
		JOIN courses c ON c.id = p.course_id
		JOIN users u ON u.id = c.user_id
		LEFT JOIN categories cat ON cat.id = c.category_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query enrolled courses: %w", err)
	}
	defer rows.Close()

	courses := []EnrolledCourse{}
	for rows.Next() {
		var e EnrolledCourse
		targets := append(courseScanTargets(&e.Course), &e.CategoryName, &e.ChapterCount, &e.AuthorName, &e.PurchasedAt, &e.CompletedChapters)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan enrolled course: %w", err)
		}
		courses = append(courses, e)
	}
	return courses, rows.Err()
}

func (r *purchaseRepo) RevenueByAuthor(ctx context.Context, authorID string) ([]model.CourseRevenue, error) {
	query := `
		SELECT c.id, c.title, COALESCE(SUM(p.amount), 0) AS total, COUNT(p.id) AS sales
		FROM courses c
		LEFT JOIN purchases p ON p.course_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id, c.title
		ORDER BY total DESC, c.title ASC
	`
	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("query revenue: %w", err)
	}
	defer rows.Close()

	revenue := []model.CourseRevenue{}
	for rows.Next() {
		var cr model.CourseRevenue
		if err := rows.Scan(&cr.CourseID, &cr.Title, &cr.Total, &cr.Sales); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		revenue = append(revenue, cr)
	}
	return revenue, rows.Err()
}

func (r *purchaseRepo) UpsertProgress(ctx context.Context, p *model.UserProgress) error {
	query := `
		INSERT INTO user_progress (user_id, chapter_id, is_completed)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chapter_id)
		DO UPDATE SET is_completed = EXCLUDED.is_completed, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, p.UserID, p.ChapterID, p.IsCompleted).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (r *purchaseRepo) CountCompletedChapters(ctx context.Context, userID, courseID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_progress up
		JOIN chapters ch ON ch.id = up.chapter_id
		WHERE up.user_id = $1 AND ch.course_id = $2 AND ch.is_published AND up.is_completed
	`
	var n int
	if err := r.pool.QueryRow(ctx, query, userID, courseID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count completed chapters: %w", err)
	}
	return n, nil
}
