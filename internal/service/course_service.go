package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learnhub/internal/cache"
	"learnhub/internal/model"
	"learnhub/internal/pubsub"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CourseDetail is a course with everything its page renders.
type CourseDetail struct {
	Course     *model.Course
	Category   *model.Category
	Chapters   []model.Chapter
	Objectives []model.LearningObjective
	IsOwner    bool
	Purchased  bool
}

// CourseUpdate holds the optional fields of a course edit.
type CourseUpdate struct {
	Title       *string
	Description *string
	ImageURL    *string
	Price       *decimal.Decimal
	CategoryID  *string
}

// CourseService defines the interface for course operations
type CourseService interface {
	CreateCourse(ctx context.Context, userID, title string) (*model.Course, error)
	GetCourse(ctx context.Context, viewerID, courseID string) (*CourseDetail, error)
	ListCatalog(ctx context.Context, query, categoryID string) ([]model.CourseSummary, error)
	ListOwnCourses(ctx context.Context, userID string) ([]model.CourseSummary, error)
	UpdateCourse(ctx context.Context, userID, courseID string, in CourseUpdate) (*model.Course, error)
	DeleteCourse(ctx context.Context, userID, courseID string) error
	PublishCourse(ctx context.Context, userID, courseID string) (*model.Course, error)
	UnpublishCourse(ctx context.Context, userID, courseID string) (*model.Course, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	ListObjectives(ctx context.Context, viewerID, courseID string) ([]model.LearningObjective, error)
	CreateObjective(ctx context.Context, userID, courseID, text string) (*model.LearningObjective, error)
	DeleteObjective(ctx context.Context, userID, courseID, objectiveID string) error
	ReorderObjectives(ctx context.Context, userID, courseID string, from, to int) ([]model.LearningObjective, error)
}

// CourseOptions tunes catalog caching.
type CourseOptions struct {
	CatalogTTL time.Duration
}

// courseService is the implementation of CourseService
type courseService struct {
	repo      repository.CourseRepository
	chapters  repository.ChapterRepository
	purchases repository.PurchaseRepository
	uploads   UploadService
	cache     cache.Cache
	events    *pubsub.Emitter
	activity  ActivityRecorder
	opts      CourseOptions
	logger    zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(repo repository.CourseRepository, chapters repository.ChapterRepository, purchases repository.PurchaseRepository, uploads UploadService, c cache.Cache, events *pubsub.Emitter, activity ActivityRecorder, opts CourseOptions, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		chapters:  chapters,
		purchases: purchases,
		uploads:   uploads,
		cache:     c,
		events:    events,
		activity:  activity,
		opts:      opts,
		logger:    logger.With().Str("service", "CourseService").Logger(),
	}
}

// loadCourse returns the course when it exists, regardless of owner.
func loadCourse(ctx context.Context, repo repository.CourseRepository, courseID string) (*model.Course, error) {
	c, err := repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

// ownedCourse returns the course when userID is its author.
func ownedCourse(ctx context.Context, repo repository.CourseRepository, userID, courseID string) (*model.Course, error) {
	c, err := loadCourse(ctx, repo, courseID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	return c, nil
}

// visibleCourse returns the course when it is published or owned by viewerID.
// Hidden courses look missing.
func visibleCourse(ctx context.Context, repo repository.CourseRepository, viewerID, courseID string) (*model.Course, error) {
	c, err := loadCourse(ctx, repo, courseID)
	if err != nil {
		return nil, err
	}
	if !c.IsPublished && c.UserID != viewerID {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (s *courseService) CreateCourse(ctx context.Context, userID, title string) (*model.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	c := &model.Course{UserID: userID, Title: title}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivityCourseCreated, c.ID)
	return c, nil
}

func (s *courseService) GetCourse(ctx context.Context, viewerID, courseID string) (*CourseDetail, error) {
	c, err := visibleCourse(ctx, s.repo, viewerID, courseID)
	if err != nil {
		return nil, err
	}
	detail := &CourseDetail{Course: c, IsOwner: c.UserID == viewerID}

	if c.CategoryID != nil {
		if detail.Category, err = s.repo.GetCategoryByID(ctx, *c.CategoryID); err != nil {
			return nil, fmt.Errorf("fetch category: %w", err)
		}
	}
	if detail.Chapters, err = s.chapters.ListChapters(ctx, c.ID, !detail.IsOwner); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	if detail.Objectives, err = s.repo.ListObjectives(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	if viewerID != "" && !detail.IsOwner {
		p, err := s.purchases.GetPurchase(ctx, viewerID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch purchase: %w", err)
		}
		detail.Purchased = p != nil
	}
	return detail, nil
}

func (s *courseService) ListCatalog(ctx context.Context, query, categoryID string) ([]model.CourseSummary, error) {
	query = strings.TrimSpace(query)
	var courses []model.CourseSummary
	err := s.cache.GetOrLoad(ctx, cache.CatalogKey(query, categoryID), s.opts.CatalogTTL, &courses, func(ctx context.Context) (any, error) {
		return s.repo.ListPublishedCourses(ctx, repository.CourseFilter{Query: query, CategoryID: categoryID})
	})
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.CourseSummary{}
	}
	return courses, nil
}

func (s *courseService) ListOwnCourses(ctx context.Context, userID string) ([]model.CourseSummary, error) {
	return s.repo.GetCoursesByUserID(ctx, userID)
}

func (s *courseService) UpdateCourse(ctx context.Context, userID, courseID string, in CourseUpdate) (*model.Course, error) {
	c, err := ownedCourse(ctx, s.repo, userID, courseID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		c.Title = title
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ImageURL != nil {
		if err := s.uploads.CheckImageURL(userID, *in.ImageURL); err != nil {
			return nil, err
		}
		c.ImageURL = *in.ImageURL
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, invalidInput("price cannot be negative")
		}
		c.Price = decimal.NewNullDecimal(in.Price.Round(2))
	}
	if in.CategoryID != nil {
		cat, err := s.repo.GetCategoryByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("fetch category: %w", err)
		}
		if cat == nil {
			return nil, ErrCategoryNotFound
		}
		c.CategoryID = &cat.ID
	}

	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		return nil, err
	}
	if c.IsPublished {
		s.invalidate(ctx, c.UserID)
	}
	return c, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, userID, courseID string) error {
	c, err := ownedCourse(ctx, s.repo, userID, courseID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.uploads.DeleteImage(ctx, c.UserID, c.ImageURL); err != nil {
		s.logger.Warn().Err(err).Str("course_id", courseID).Msg("Failed to delete course image")
	}
	if c.IsPublished {
		s.invalidate(ctx, c.UserID)
		s.events.Emit(ctx, pubsub.EventCourseUnpublished, courseID, map[string]string{"reason": "deleted"})
	}
	return nil
}

func (s *courseService) PublishCourse(ctx context.Context, userID, courseID string) (*model.Course, error) {
	c, err := ownedCourse(ctx, s.repo, userID, courseID)
	if err != nil {
		return nil, err
	}
	published, err := s.chapters.CountPublishedChapters(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("count published chapters: %w", err)
	}
	if missing := CourseMissingFields(c, published); len(missing) > 0 {
		return nil, &NotReadyError{Resource: "course", Missing: missing}
	}
	if err := s.repo.SetCoursePublished(ctx, courseID, true); err != nil {
		return nil, err
	}
	c.IsPublished = true
	s.invalidate(ctx, c.UserID)
	s.events.Emit(ctx, pubsub.EventCoursePublished, courseID, map[string]string{"author_id": c.UserID})
	return c, nil
}

func (s *courseService) UnpublishCourse(ctx context.Context, userID, courseID string) (*model.Course, error) {
	c, err := ownedCourse(ctx, s.repo, userID, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCoursePublished(ctx, courseID, false); err != nil {
		return nil, err
	}
	c.IsPublished = false
	s.invalidate(ctx, c.UserID)
	s.events.Emit(ctx, pubsub.EventCourseUnpublished, courseID, map[string]string{"author_id": c.UserID})
	return c, nil
}

func (s *courseService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *courseService) invalidate(ctx context.Context, authorID string) {
	invalidateCourseViews(ctx, s.cache, s.logger, authorID)
}

// invalidateCourseViews drops cached views that list the author's published courses.
func invalidateCourseViews(ctx context.Context, c cache.Cache, logger zerolog.Logger, authorID string) {
	if err := c.DeletePrefix(ctx, cache.CatalogPrefix); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	}
	if err := c.Delete(ctx, cache.ProfileKey(authorID)); err != nil {
		logger.Warn().Err(err).Str("user_id", authorID).Msg("Failed to invalidate profile cache")
	}
}

func (s *courseService) ListObjectives(ctx context.Context, viewerID, courseID string) ([]model.LearningObjective, error) {
	if _, err := visibleCourse(ctx, s.repo, viewerID, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListObjectives(ctx, courseID)
}

func (s *courseService) CreateObjective(ctx context.Context, userID, courseID, text string) (*model.LearningObjective, error) {
	if _, err := ownedCourse(ctx, s.repo, userID, courseID); err != nil {
		return nil, err
	}
	o := &model.LearningObjective{CourseID: courseID, Text: strings.TrimSpace(text)}
	if err := s.repo.CreateObjective(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *courseService) DeleteObjective(ctx context.Context, userID, courseID, objectiveID string) error {
	if _, err := ownedCourse(ctx, s.repo, userID, courseID); err != nil {
		return err
	}
	o, err := s.repo.GetObjective(ctx, objectiveID)
	if err != nil {
		return err
	}
	if o == nil || o.CourseID != courseID {
		return ErrObjectiveNotFound
	}
	return s.repo.DeleteObjective(ctx, objectiveID)
}

// ReorderObjectives moves the objective at index from to index to and rewrites
// every position as its new index, one row at a time.
func (s *courseService) ReorderObjectives(ctx context.Context, userID, courseID string, from, to int) ([]model.LearningObjective, error) {
	if _, err := ownedCourse(ctx, s.repo, userID, courseID); err != nil {
		return nil, err
	}
	current, err := s.repo.ListObjectives(ctx, courseID)
	if err != nil {
		return nil, err
	}
	reordered, err := MoveItem(current, from, to)
	if err != nil {
		return nil, err
	}
	for i := range reordered {
		if err := s.repo.UpdateObjectivePosition(ctx, reordered[i].ID, i); err != nil {
			return nil, fmt.Errorf("update objective %s position: %w", reordered[i].ID, err)
		}
		reordered[i].Position = i
	}
	return reordered, nil
}
