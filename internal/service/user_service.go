package service

import (
	"context"
	"fmt"
	"time"

	"learnhub/internal/cache"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
)

// PublicProfile is what other users see on a profile page.
type PublicProfile struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	ImageURL           string                `json:"image_url"`
	Bio                string                `json:"bio"`
	Role               string                `json:"role"`
	CreatedAt          time.Time             `json:"created_at"`
	Links              []model.ProfileLink   `json:"links"`
	Courses            []model.CourseSummary `json:"courses"`
	PublishedPostCount int                   `json:"published_post_count"`
}

// UserUpdate holds the optional profile fields a user may change.
type UserUpdate struct {
	Name     *string
	Bio      *string
	ImageURL *string
}

// LinkUpdate holds the optional fields of a profile link.
type LinkUpdate struct {
	Label *string
	URL   *string
}

type UserService interface {
	Get(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, in UserUpdate) (*model.User, error)
	GetProfile(ctx context.Context, id string) (*PublicProfile, error)

	ListLinks(ctx context.Context, userID string) ([]model.ProfileLink, error)
	CreateLink(ctx context.Context, userID, label, url string) (*model.ProfileLink, error)
	UpdateLink(ctx context.Context, userID, linkID string, in LinkUpdate) (*model.ProfileLink, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
	ReorderLinks(ctx context.Context, userID string, list []model.PositionUpdate) error
}

type userService struct {
	userRepo   repository.UserRepository
	linkRepo   repository.ProfileLinkRepository
	courseRepo repository.CourseRepository
	postRepo   repository.PostRepository
	cache      cache.Cache
	ttl        time.Duration
	logger     zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, linkRepo repository.ProfileLinkRepository, courseRepo repository.CourseRepository, postRepo repository.PostRepository, c cache.Cache, profileTTL time.Duration, logger zerolog.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		linkRepo:   linkRepo,
		courseRepo: courseRepo,
		postRepo:   postRepo,
		cache:      c,
		ttl:        profileTTL,
		logger:     logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id string, in UserUpdate) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.ImageURL != nil {
		u.ImageURL = *in.ImageURL
	}
	if err := s.userRepo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

func (s *userService) GetProfile(ctx context.Context, id string) (*PublicProfile, error) {
	var profile PublicProfile
	err := s.cache.GetOrLoad(ctx, cache.ProfileKey(id), s.ttl, &profile, func(ctx context.Context) (any, error) {
		return s.loadProfile(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *userService) loadProfile(ctx context.Context, id string) (*PublicProfile, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.linkRepo.ListLinks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	courses, err := s.courseRepo.ListPublishedCoursesByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	posts, err := s.postRepo.CountPostsByUserID(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if links == nil {
		links = []model.ProfileLink{}
	}
	if courses == nil {
		courses = []model.CourseSummary{}
	}
	return &PublicProfile{
		ID:                 u.ID,
		Name:               u.Name,
		ImageURL:           u.ImageURL,
		Bio:                u.Bio,
		Role:               u.Role,
		CreatedAt:          u.CreatedAt,
		Links:              links,
		Courses:            courses,
		PublishedPostCount: posts,
	}, nil
}

func (s *userService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cache.ProfileKey(userID)); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate profile cache")
	}
}

func (s *userService) ListLinks(ctx context.Context, userID string) ([]model.ProfileLink, error) {
	return s.linkRepo.ListLinks(ctx, userID)
}

func (s *userService) CreateLink(ctx context.Context, userID, label, url string) (*model.ProfileLink, error) {
	l := &model.ProfileLink{UserID: userID, Label: label, URL: url}
	if err := s.linkRepo.CreateLink(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return l, nil
}

func (s *userService) ownedLink(ctx context.Context, userID, linkID string) (*model.ProfileLink, error) {
	l, err := s.linkRepo.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLinkNotFound
	}
	if l.UserID != userID {
		return nil, ErrForbidden
	}
	return l, nil
}

func (s *userService) UpdateLink(ctx context.Context, userID, linkID string, in LinkUpdate) (*model.ProfileLink, error) {
	l, err := s.ownedLink(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}
	if in.Label != nil {
		l.Label = *in.Label
	}
	if in.URL != nil {
		l.URL = *in.URL
	}
	if err := s.linkRepo.UpdateLink(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return l, nil
}

func (s *userService) DeleteLink(ctx context.Context, userID, linkID string) error {
	if _, err := s.ownedLink(ctx, userID, linkID); err != nil {
		return err
	}
	if err := s.linkRepo.DeleteLink(ctx, linkID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// ReorderLinks writes each position in turn, stopping at the first failure.
func (s *userService) ReorderLinks(ctx context.Context, userID string, list []model.PositionUpdate) error {
	for _, item := range list {
		if _, err := s.ownedLink(ctx, userID, item.ID); err != nil {
			return err
		}
	}
	for _, item := range list {
		if err := s.linkRepo.UpdateLinkPosition(ctx, item.ID, item.Position); err != nil {
			return fmt.Errorf("update link %s position: %w", item.ID, err)
		}
	}
	s.invalidate(ctx, userID)
	return nil
}
