package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub/internal/cache"
	"learnhub/internal/model"
	"learnhub/internal/pubsub"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
)

// ChapterDetail is a chapter as shown to a viewer.
type ChapterDetail struct {
	Chapter       *model.Chapter
	Sections      []model.Section
	NextChapterID string
}

// ChapterUpdate holds the optional fields of a chapter edit.
type ChapterUpdate struct {
	Title       *string
	Description *string
	VideoURL    *string
	IsFree      *bool
}

// SectionUpdate holds the optional fields of a section edit.
type SectionUpdate struct {
	Title   *string
	Content *string
}

type ChapterService interface {
	CreateChapter(ctx context.Context, userID, courseID, title string) (*model.Chapter, error)
	GetChapter(ctx context.Context, viewerID, courseID, chapterID string) (*ChapterDetail, error)
	UpdateChapter(ctx context.Context, userID, courseID, chapterID string, in ChapterUpdate) (*model.Chapter, error)
	DeleteChapter(ctx context.Context, userID, courseID, chapterID string) error
	PublishChapter(ctx context.Context, userID, courseID, chapterID string) (*model.Chapter, error)
	UnpublishChapter(ctx context.Context, userID, courseID, chapterID string) (*model.Chapter, error)
	ReorderChapters(ctx context.Context, userID, courseID string, list []model.PositionUpdate) error

	CreateSection(ctx context.Context, userID, chapterID, title string) (*model.Section, error)
	ListSections(ctx context.Context, viewerID, chapterID string) ([]model.Section, error)
	UpdateSection(ctx context.Context, userID, chapterID, sectionID string, in SectionUpdate) (*model.Section, error)
	DeleteSection(ctx context.Context, userID, chapterID, sectionID string) error
	ReorderSections(ctx context.Context, userID, chapterID string, list []model.PositionUpdate) error
}

type chapterService struct {
	courses   repository.CourseRepository
	repo      repository.ChapterRepository
	purchases repository.PurchaseRepository
	cache     cache.Cache
	events    *pubsub.Emitter
	logger    zerolog.Logger
}

func NewChapterService(courses repository.CourseRepository, repo repository.ChapterRepository, purchases repository.PurchaseRepository, c cache.Cache, events *pubsub.Emitter, logger zerolog.Logger) ChapterService {
	return &chapterService{
		courses:   courses,
		repo:      repo,
		purchases: purchases,
		cache:     c,
		events:    events,
		logger:    logger.With().Str("service", "ChapterService").Logger(),
	}
}

func (s *chapterService) chapterInCourse(ctx context.Context, courseID, chapterID string) (*model.Chapter, error) {
	ch, err := s.repo.GetChapterByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil || ch.CourseID != courseID {
		return nil, ErrChapterNotFound
	}
	return ch, nil
}

// ownedChapter resolves chapter -> course -> author.
func (s *chapterService) ownedChapter(ctx context.Context, userID, chapterID string) (*model.Chapter, *model.Course, error) {
	ch, err := s.repo.GetChapterByID(ctx, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if ch == nil {
		return nil, nil, ErrChapterNotFound
	}
	c, err := ownedCourse(ctx, s.courses, userID, ch.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return ch, c, nil
}

// canRead reports whether a non-owner may open the chapter's content.
func (s *chapterService) canRead(ctx context.Context, viewerID string, c *model.Course, ch *model.Chapter) (bool, error) {
	if c.UserID == viewerID {
		return true, nil
	}
	if !ch.IsPublished {
		return false, ErrChapterNotFound
	}
	if ch.IsFree {
		return true, nil
	}
	if viewerID == "" {
		return false, nil
	}
	p, err := s.purchases.GetPurchase(ctx, viewerID, c.ID)
	if err != nil {
		return false, fmt.Errorf("fetch purchase: %w", err)
	}
	return p != nil, nil
}

func (s *chapterService) CreateChapter(ctx context.Context, userID, courseID, title string) (*model.Chapter, error) {
	if _, err := ownedCourse(ctx, s.courses, userID, courseID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	ch := &model.Chapter{CourseID: courseID, Title: title}
	if err := s.repo.CreateChapter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *chapterService) GetChapter(ctx context.Context, viewerID, courseID, chapterID string) (*ChapterDetail, error) {
	c, err := visibleCourse(ctx, s.courses, viewerID, courseID)
	if err != nil {
		return nil, err
	}
	ch, err := s.chapterInCourse(ctx, courseID, chapterID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canRead(ctx, viewerID, c, ch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	sections, err := s.repo.ListSections(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	siblings, err := s.repo.ListChapters(ctx, courseID, c.UserID != viewerID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	detail := &ChapterDetail{Chapter: ch, Sections: sections}
	for i := range siblings {
		if siblings[i].ID == ch.ID && i+1 < len(siblings) {
			detail.NextChapterID = siblings[i+1].ID
		}
	}
	return detail, nil
}

func (s *chapterService) UpdateChapter(ctx context.Context, userID, courseID, chapterID string, in ChapterUpdate) (*model.Chapter, error) {
	if _, err := ownedCourse(ctx, s.courses, userID, courseID); err != nil {
		return nil, err
	}
	ch, err := s.chapterInCourse(ctx, courseID, chapterID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		ch.Title = title
	}
	if in.Description != nil {
		ch.Description = *in.Description
	}
	if in.VideoURL != nil {
		ch.VideoURL = *in.VideoURL
	}
	if in.IsFree != nil {
		ch.IsFree = *in.IsFree
	}
	if err := s.repo.UpdateChapter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *chapterService) DeleteChapter(ctx context.Context, userID, courseID, chapterID string) error {
	c, err := ownedCourse(ctx, s.courses, userID, courseID)
	if err != nil {
		return err
	}
	ch, err := s.chapterInCourse(ctx, courseID, chapterID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteChapter(ctx, chapterID); err != nil {
		return err
	}
	if ch.IsPublished {
		return s.unpublishIfEmpty(ctx, c)
	}
	return nil
}

func (s *chapterService) PublishChapter(ctx context.Context, userID, courseID, chapterID string) (*model.Chapter, error) {
	c, err := ownedCourse(ctx, s.courses, userID, courseID)
	if err != nil {
		return nil, err
	}
	ch, err := s.chapterInCourse(ctx, courseID, chapterID)
	if err != nil {
		return nil, err
	}
	if missing := ChapterMissingFields(ch); len(missing) > 0 {
		return nil, &NotReadyError{Resource: "chapter", Missing: missing}
	}
	if err := s.repo.SetChapterPublished(ctx, chapterID, true); err != nil {
		return nil, err
	}
	if !ch.IsPublished && c.IsPublished {
		invalidateCourseViews(ctx, s.cache, s.logger, c.UserID)
	}
	ch.IsPublished = true
	return ch, nil
}

func (s *chapterService) UnpublishChapter(ctx context.Context, userID, courseID, chapterID string) (*model.Chapter, error) {
	c, err := ownedCourse(ctx, s.courses, userID, courseID)
	if err != nil {
		return nil, err
	}
	ch, err := s.chapterInCourse(ctx, courseID, chapterID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetChapterPublished(ctx, chapterID, false); err != nil {
		return nil, err
	}
	ch.IsPublished = false
	if err := s.unpublishIfEmpty(ctx, c); err != nil {
		return nil, err
	}
	return ch, nil
}

// unpublishIfEmpty runs after a chapter leaves a course's published set. It takes
// a published course offline once it has no published chapters, and otherwise
// drops the cached views that carry its chapter count.
func (s *chapterService) unpublishIfEmpty(ctx context.Context, c *model.Course) error {
	if !c.IsPublished {
		return nil
	}
	n, err := s.repo.CountPublishedChapters(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("count published chapters: %w", err)
	}
	if n > 0 {
		invalidateCourseViews(ctx, s.cache, s.logger, c.UserID)
		return nil
	}
	if err := s.courses.SetCoursePublished(ctx, c.ID, false); err != nil {
		return err
	}
	c.IsPublished = false
	s.logger.Info().Str("course_id", c.ID).Msg("Unpublished course with no published chapters")
	invalidateCourseViews(ctx, s.cache, s.logger, c.UserID)
	s.events.Emit(ctx, pubsub.EventCourseUnpublished, c.ID, map[string]string{"reason": "no_published_chapters"})
	return nil
}

// ReorderChapters applies each position with its own update, stopping at the first failure.
func (s *chapterService) ReorderChapters(ctx context.Context, userID, courseID string, list []model.PositionUpdate) error {
	if _, err := ownedCourse(ctx, s.courses, userID, courseID); err != nil {
		return err
	}
	chapters, err := s.repo.ListChapters(ctx, courseID, false)
	if err != nil {
		return err
	}
	inCourse := make(map[string]bool, len(chapters))
	for _, ch := range chapters {
		inCourse[ch.ID] = true
	}
	for _, item := range list {
		if !inCourse[item.ID] {
			return ErrChapterNotFound
		}
	}
	for _, item := range list {
		if err := s.repo.UpdateChapterPosition(ctx, item.ID, item.Position); err != nil {
			return fmt.Errorf("update chapter %s position: %w", item.ID, err)
		}
	}
	return nil
}

func (s *chapterService) CreateSection(ctx context.Context, userID, chapterID, title string) (*model.Section, error) {
	if _, _, err := s.ownedChapter(ctx, userID, chapterID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	sec := &model.Section{ChapterID: chapterID, Title: title}
	if err := s.repo.CreateSection(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *chapterService) ListSections(ctx context.Context, viewerID, chapterID string) ([]model.Section, error) {
	ch, err := s.repo.GetChapterByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChapterNotFound
	}
	c, err := visibleCourse(ctx, s.courses, viewerID, ch.CourseID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canRead(ctx, viewerID, c, ch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return s.repo.ListSections(ctx, chapterID)
}

func (s *chapterService) sectionInChapter(ctx context.Context, chapterID, sectionID string) (*model.Section, error) {
	sec, err := s.repo.GetSectionByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil || sec.ChapterID != chapterID {
		return nil, ErrSectionNotFound
	}
	return sec, nil
}

func (s *chapterService) UpdateSection(ctx context.Context, userID, chapterID, sectionID string, in SectionUpdate) (*model.Section, error) {
	if _, _, err := s.ownedChapter(ctx, userID, chapterID); err != nil {
		return nil, err
	}
	sec, err := s.sectionInChapter(ctx, chapterID, sectionID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		sec.Title = title
	}
	if in.Content != nil {
		sec.Content = *in.Content
	}
	if err := s.repo.UpdateSection(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *chapterService) DeleteSection(ctx context.Context, userID, chapterID, sectionID string) error {
	if _, _, err := s.ownedChapter(ctx, userID, chapterID); err != nil {
		return err
	}
	if _, err := s.sectionInChapter(ctx, chapterID, sectionID); err != nil {
		return err
	}
	return s.repo.DeleteSection(ctx, sectionID)
}

// ReorderSections applies every position in a single transaction.
func (s *chapterService) ReorderSections(ctx context.Context, userID, chapterID string, list []model.PositionUpdate) error {
	if _, _, err := s.ownedChapter(ctx, userID, chapterID); err != nil {
		return err
	}
	if err := s.repo.ReorderSections(ctx, chapterID, list); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSectionNotFound
		}
		return err
	}
	return nil
}
