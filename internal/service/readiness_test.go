package service

import (
	"testing"

	"learnhub/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCourseMissingFields(t *testing.T) {
	assert.Equal(t,
		[]string{"title", "description", "image_url", "category_id", "price", "published_chapter"},
		CourseMissingFields(&model.Course{}, 0))

	cat := "cat-1"
	ready := &model.Course{
		Title:       "Go",
		Description: "Learn Go",
		ImageURL:    "https://cdn/x.png",
		CategoryID:  &cat,
		Price:       decimal.NewNullDecimal(decimal.Zero),
	}
	assert.Empty(t, CourseMissingFields(ready, 1))
	assert.Equal(t, []string{"published_chapter"}, CourseMissingFields(ready, 0))
}

func TestChapterMissingFields(t *testing.T) {
	assert.Equal(t, []string{"description", "video_url"}, ChapterMissingFields(&model.Chapter{Title: "Intro"}))
	assert.Empty(t, ChapterMissingFields(&model.Chapter{Title: "a", Description: "b", VideoURL: "c"}))
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 0.0, ProgressPercentage(0, 0))
	assert.Equal(t, 50.0, ProgressPercentage(2, 4))
	assert.Equal(t, 100.0, ProgressPercentage(3, 3))
	assert.Equal(t, 100.0, ProgressPercentage(5, 3))
}
