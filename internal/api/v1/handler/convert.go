package handler

import (
	"time"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"learnhub/internal/service"
)

func toUserDTO(u *model.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		ImageURL:  u.ImageURL,
		Bio:       u.Bio,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toAuthDTO(res *service.AuthResult) dto.AuthResponseDTO {
	return dto.AuthResponseDTO{Token: res.Token, ExpiresAt: res.ExpiresAt, User: toUserDTO(res.User)}
}

func toLinkDTO(l model.ProfileLink) dto.ProfileLinkResponseDTO {
	return dto.ProfileLinkResponseDTO{ID: l.ID, Label: l.Label, URL: l.URL, Position: l.Position}
}

func toLinkDTOs(links []model.ProfileLink) []dto.ProfileLinkResponseDTO {
	out := make([]dto.ProfileLinkResponseDTO, 0, len(links))
	for _, l := range links {
		out = append(out, toLinkDTO(l))
	}
	return out
}

func toCourseDTO(c *model.Course) dto.CourseResponseDTO {
	resp := dto.CourseResponseDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CategoryID:  c.CategoryID,
		IsPublished: c.IsPublished,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Price.Valid {
		price := c.Price.Decimal.Round(2)
		resp.Price = &price
	}
	return resp
}

func toCourseSummaryDTO(c model.CourseSummary) dto.CourseSummaryResponseDTO {
	return dto.CourseSummaryResponseDTO{
		CourseResponseDTO: toCourseDTO(&c.Course),
		CategoryName:      c.CategoryName,
		ChapterCount:      c.ChapterCount,
		AuthorName:        c.AuthorName,
	}
}

func toCourseSummaryDTOs(courses []model.CourseSummary) []dto.CourseSummaryResponseDTO {
	out := make([]dto.CourseSummaryResponseDTO, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseSummaryDTO(c))
	}
	return out
}

func toObjectiveDTOs(objectives []model.LearningObjective) []dto.ObjectiveResponseDTO {
	out := make([]dto.ObjectiveResponseDTO, 0, len(objectives))
	for _, o := range objectives {
		out = append(out, dto.ObjectiveResponseDTO{ID: o.ID, Text: o.Text, Position: o.Position})
	}
	return out
}

func toChapterDTO(ch *model.Chapter) dto.ChapterResponseDTO {
	return dto.ChapterResponseDTO{
		ID:          ch.ID,
		CourseID:    ch.CourseID,
		Title:       ch.Title,
		Description: ch.Description,
		VideoURL:    ch.VideoURL,
		Position:    ch.Position,
		IsPublished: ch.IsPublished,
		IsFree:      ch.IsFree,
		CreatedAt:   ch.CreatedAt,
		UpdatedAt:   ch.UpdatedAt,
	}
}

func toChapterDTOs(chapters []model.Chapter) []dto.ChapterResponseDTO {
	out := make([]dto.ChapterResponseDTO, 0, len(chapters))
	for i := range chapters {
		out = append(out, toChapterDTO(&chapters[i]))
	}
	return out
}

func toSectionDTO(s *model.Section) dto.SectionResponseDTO {
	return dto.SectionResponseDTO{
		ID:        s.ID,
		ChapterID: s.ChapterID,
		Title:     s.Title,
		Content:   s.Content,
		Position:  s.Position,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSectionDTOs(sections []model.Section) []dto.SectionResponseDTO {
	out := make([]dto.SectionResponseDTO, 0, len(sections))
	for i := range sections {
		out = append(out, toSectionDTO(&sections[i]))
	}
	return out
}

func toEnrollmentDTOs(enrollments []service.Enrollment) []dto.EnrollmentResponseDTO {
	out := make([]dto.EnrollmentResponseDTO, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, dto.EnrollmentResponseDTO{
			Course:            toCourseSummaryDTO(e.CourseSummary),
			PurchasedAt:       e.PurchasedAt,
			CompletedChapters: e.CompletedChapters,
			Percentage:        e.Percentage,
		})
	}
	return out
}

func toReactionDTOs(counts []repository.ReactionCount) []dto.ReactionCountDTO {
	out := make([]dto.ReactionCountDTO, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.ReactionCountDTO{Type: c.Type, Count: c.Count})
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toPostDTO(p *model.Post) dto.PostResponseDTO {
	return dto.PostResponseDTO{
		ID:           p.ID,
		UserID:       p.UserID,
		AuthorName:   p.AuthorName,
		Title:        p.Title,
		Content:      p.Content,
		ImageURL:     p.ImageURL,
		IsPublished:  p.IsPublished,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toCommentDTO(c *model.Comment) dto.CommentResponseDTO {
	return dto.CommentResponseDTO{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Replies:    []dto.ReplyResponseDTO{},
	}
}

func toReplyDTO(r *model.Reply) dto.ReplyResponseDTO {
	return dto.ReplyResponseDTO{
		ID:            r.ID,
		CommentID:     r.CommentID,
		ParentReplyID: r.ParentReplyID,
		UserID:        r.UserID,
		AuthorName:    r.AuthorName,
		Content:       r.Content,
		CreatedAt:     r.CreatedAt,
		Replies:       []dto.ReplyResponseDTO{},
	}
}

func toReplyTree(nodes []*service.ReplyNode) []dto.ReplyResponseDTO {
	out := make([]dto.ReplyResponseDTO, 0, len(nodes))
	for _, n := range nodes {
		r := toReplyDTO(&n.Reply)
		r.Replies = toReplyTree(n.Children)
		out = append(out, r)
	}
	return out
}

func toThreadDTOs(threads []service.CommentThread) []dto.CommentResponseDTO {
	out := make([]dto.CommentResponseDTO, 0, len(threads))
	for i := range threads {
		c := toCommentDTO(&threads[i].Comment)
		c.Replies = toReplyTree(threads[i].Replies)
		out = append(out, c)
	}
	return out
}

func toIdeaDTO(i *model.Idea) dto.IdeaResponseDTO {
	return dto.IdeaResponseDTO{ID: i.ID, Title: i.Title, Content: i.Content, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt}
}

func toEventDTO(e *model.CalendarEvent) dto.EventResponseDTO {
	return dto.EventResponseDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		AllDay:      e.AllDay,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toActivityDTOs(days []model.ActivityDay) []dto.ActivityDayDTO {
	out := make([]dto.ActivityDayDTO, 0, len(days))
	for _, d := range days {
		out = append(out, dto.ActivityDayDTO{Date: d.Date.UTC().Format(time.DateOnly), Count: d.Count})
	}
	return out
}
