package service

import (
	"context"
	"strings"

	"learnhub/internal/model"
	"learnhub/internal/repository"
)

type IdeaUpdate struct {
	Title   *string
	Content *string
}

type IdeaService interface {
	List(ctx context.Context, userID string) ([]model.Idea, error)
	Create(ctx context.Context, userID, title, content string) (*model.Idea, error)
	Get(ctx context.Context, userID, ideaID string) (*model.Idea, error)
	Update(ctx context.Context, userID, ideaID string, in IdeaUpdate) (*model.Idea, error)
	Delete(ctx context.Context, userID, ideaID string) error
}

type ideaService struct {
	repo repository.IdeaRepository
}

func NewIdeaService(repo repository.IdeaRepository) IdeaService {
	return &ideaService{repo: repo}
}

func (s *ideaService) List(ctx context.Context, userID string) ([]model.Idea, error) {
	return s.repo.ListIdeas(ctx, userID)
}

func (s *ideaService) Create(ctx context.Context, userID, title, content string) (*model.Idea, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	i := &model.Idea{UserID: userID, Title: title, Content: content}
	if err := s.repo.CreateIdea(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// Get hides ideas of other users behind not found.
func (s *ideaService) Get(ctx context.Context, userID, ideaID string) (*model.Idea, error) {
	i, err := s.repo.GetIdeaByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if i == nil || i.UserID != userID {
		return nil, ErrIdeaNotFound
	}
	return i, nil
}

func (s *ideaService) Update(ctx context.Context, userID, ideaID string, in IdeaUpdate) (*model.Idea, error) {
	i, err := s.Get(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidInput("title cannot be empty")
		}
		i.Title = title
	}
	if in.Content != nil {
		i.Content = *in.Content
	}
	if err := s.repo.UpdateIdea(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *ideaService) Delete(ctx context.Context, userID, ideaID string) error {
	if _, err := s.Get(ctx, userID, ideaID); err != nil {
		return err
	}
	return s.repo.DeleteIdea(ctx, ideaID)
}
