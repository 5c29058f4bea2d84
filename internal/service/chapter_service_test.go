package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"learnhub/internal/cache"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chapterFixture struct {
	courses   *fakeCourseRepo
	chapters  *fakeChapterRepo
	purchases *fakePurchaseRepo
	cache     *fakeCache
	svc       ChapterService
}

func newChapterFixture(course *model.Course, chapters ...*model.Chapter) *chapterFixture {
	f := &chapterFixture{
		courses:   newFakeCourseRepo(course),
		chapters:  newFakeChapterRepo(chapters...),
		purchases: newFakePurchaseRepo(),
		cache:     &fakeCache{},
	}
	f.svc = NewChapterService(f.courses, f.chapters, f.purchases, f.cache, nil, zerolog.Nop())
	return f
}

func TestCreateChapterAppendsPosition(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1", Position: 1},
		&model.Chapter{ID: "b", CourseID: "c1", Position: 4},
	)
	ch, err := f.svc.CreateChapter(context.Background(), "owner", "c1", "Next")
	require.NoError(t, err)
	assert.Equal(t, 5, ch.Position)
}

func TestCreateFirstChapter(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"})
	ch, err := f.svc.CreateChapter(context.Background(), "owner", "c1", "Intro")
	require.NoError(t, err)
	assert.Equal(t, 0, ch.Position)

	ch, err = f.svc.CreateChapter(context.Background(), "owner", "c1", "Basics")
	require.NoError(t, err)
	assert.Equal(t, 1, ch.Position)

	_, err = f.svc.CreateChapter(context.Background(), "other", "c1", "Intro")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPublishChapterNotReady(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1", Title: "Intro"})

	_, err := f.svc.PublishChapter(context.Background(), "owner", "c1", "a")
	var notReady *NotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.Equal(t, []string{"description", "video_url"}, notReady.Missing)
}

func TestUnpublishLastChapterUnpublishesCourse(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner", IsPublished: true},
		&model.Chapter{ID: "a", CourseID: "c1", IsPublished: true},
		&model.Chapter{ID: "b", CourseID: "c1", IsPublished: true},
	)

	_, err := f.svc.UnpublishChapter(context.Background(), "owner", "c1", "a")
	require.NoError(t, err)
	assert.True(t, f.courses.courses["c1"].IsPublished, "another published chapter remains")

	_, err = f.svc.UnpublishChapter(context.Background(), "owner", "c1", "b")
	require.NoError(t, err)
	assert.False(t, f.courses.courses["c1"].IsPublished)
	assert.NotEmpty(t, f.cache.prefixes)
}

func TestChapterVisibilityInvalidatesPublishedCourseViews(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner", IsPublished: true},
		&model.Chapter{ID: "a", CourseID: "c1", IsPublished: true},
		&model.Chapter{ID: "b", CourseID: "c1", Title: "B", Description: "d", VideoURL: "https://video.test/b"},
	)
	ctx := context.Background()

	_, err := f.svc.PublishChapter(ctx, "owner", "c1", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{cache.CatalogPrefix}, f.cache.prefixes)
	assert.Equal(t, []string{cache.ProfileKey("owner")}, f.cache.deleted)

	_, err = f.svc.UnpublishChapter(ctx, "owner", "c1", "a")
	require.NoError(t, err)
	assert.True(t, f.courses.courses["c1"].IsPublished)
	assert.Len(t, f.cache.prefixes, 2)
}

func TestPublishChapterOfDraftCourseKeepsCache(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1", Title: "A", Description: "d", VideoURL: "https://video.test/a"})

	_, err := f.svc.PublishChapter(context.Background(), "owner", "c1", "a")
	require.NoError(t, err)
	assert.Empty(t, f.cache.prefixes)
}

func TestDeleteLastPublishedChapterUnpublishesCourse(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner", IsPublished: true},
		&model.Chapter{ID: "a", CourseID: "c1", IsPublished: true},
		&model.Chapter{ID: "draft", CourseID: "c1"},
	)
	require.NoError(t, f.svc.DeleteChapter(context.Background(), "owner", "c1", "a"))
	assert.False(t, f.courses.courses["c1"].IsPublished)
}

func TestDeleteDraftChapterKeepsCoursePublished(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner", IsPublished: true},
		&model.Chapter{ID: "a", CourseID: "c1", IsPublished: true},
		&model.Chapter{ID: "draft", CourseID: "c1"},
	)
	require.NoError(t, f.svc.DeleteChapter(context.Background(), "owner", "c1", "draft"))
	assert.True(t, f.courses.courses["c1"].IsPublished)
}

func TestGetChapterAccess(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner", IsPublished: true},
		&model.Chapter{ID: "free", CourseID: "c1", IsPublished: true, IsFree: true, Position: 1},
		&model.Chapter{ID: "paid", CourseID: "c1", IsPublished: true, Position: 2},
		&model.Chapter{ID: "draft", CourseID: "c1", Position: 3},
	)
	ctx := context.Background()

	d, err := f.svc.GetChapter(ctx, "viewer", "c1", "free")
	require.NoError(t, err)
	assert.Equal(t, "paid", d.NextChapterID)

	_, err = f.svc.GetChapter(ctx, "viewer", "c1", "paid")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetChapter(ctx, "viewer", "c1", "draft")
	assert.ErrorIs(t, err, ErrChapterNotFound)

	f.purchases.purchases["viewer/c1"] = &model.Purchase{UserID: "viewer", CourseID: "c1"}
	_, err = f.svc.GetChapter(ctx, "viewer", "c1", "paid")
	assert.NoError(t, err)

	d, err = f.svc.GetChapter(ctx, "owner", "c1", "draft")
	require.NoError(t, err)
	assert.Empty(t, d.NextChapterID)
}

func TestReorderChaptersRejectsForeignChapter(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1"})
	err := f.svc.ReorderChapters(context.Background(), "owner", "c1", []model.PositionUpdate{{ID: "zzz", Position: 1}})
	assert.ErrorIs(t, err, ErrChapterNotFound)
}

func TestCreateSectionAppendsPosition(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1"})
	ctx := context.Background()

	first, err := f.svc.CreateSection(ctx, "owner", "a", "Setup")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)

	second, err := f.svc.CreateSection(ctx, "owner", "a", "Hello world")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	_, err = f.svc.CreateSection(ctx, "owner", "a", "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreateSection(ctx, "other", "a", "Intruder")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, f.chapters.sections, 2)
}

func TestReorderSectionsMapsMissingSection(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1"})
	f.chapters.reorderErr = fmt.Errorf("section s9: %w", repository.ErrNotFound)

	err := f.svc.ReorderSections(context.Background(), "owner", "a", []model.PositionUpdate{{ID: "s9", Position: 1}})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestReorderSectionsPassesList(t *testing.T) {
	f := newChapterFixture(&model.Course{ID: "c1", UserID: "owner"},
		&model.Chapter{ID: "a", CourseID: "c1"})
	list := []model.PositionUpdate{{ID: "s1", Position: 2}, {ID: "s2", Position: 1}}

	require.NoError(t, f.svc.ReorderSections(context.Background(), "owner", "a", list))
	assert.Equal(t, list, f.chapters.reordered)

	err := f.svc.ReorderSections(context.Background(), "other", "a", list)
	assert.ErrorIs(t, err, ErrForbidden)
}
