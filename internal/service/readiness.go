package service

import "learnhub/internal/model"

// CourseMissingFields lists what prevents a course from being published.
func CourseMissingFields(c *model.Course, publishedChapters int) []string {
	var missing []string
	if c.Title == "" {
		missing = append(missing, "title")
	}
	if c.Description == "" {
		missing = append(missing, "description")
	}
	if c.ImageURL == "" {
		missing = append(missing, "image_url")
	}
	if c.CategoryID == nil || *c.CategoryID == "" {
		missing = append(missing, "category_id")
	}
	if !c.Price.Valid {
		missing = append(missing, "price")
	}
	if publishedChapters == 0 {
		missing = append(missing, "published_chapter")
	}
	return missing
}

// ChapterMissingFields lists what prevents a chapter from being published.
func ChapterMissingFields(ch *model.Chapter) []string {
	var missing []string
	if ch.Title == "" {
		missing = append(missing, "title")
	}
	if ch.Description == "" {
		missing = append(missing, "description")
	}
	if ch.VideoURL == "" {
		missing = append(missing, "video_url")
	}
	return missing
}

// ProgressPercentage is completed / total * 100, or 0 for an empty course.
func ProgressPercentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return float64(completed) / float64(total) * 100
}
