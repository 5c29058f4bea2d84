package service

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/mailer"
	"learnhub/internal/model"
	"learnhub/internal/pubsub"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CheckoutResult is either an immediate enrollment or a payment page URL.
type CheckoutResult struct {
	Enrolled bool
	URL      string
}

// Enrollment is a purchased course with the buyer's progress.
type Enrollment struct {
	repository.EnrolledCourse
	Percentage float64
}

type EnrollmentService interface {
	Checkout(ctx context.Context, userID, courseID string) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error)
	SetProgress(ctx context.Context, userID, chapterID string, completed bool) (*model.UserProgress, error)
	GetProgress(ctx context.Context, userID, courseID string) (float64, error)
}

type enrollmentService struct {
	users     repository.UserRepository
	courses   repository.CourseRepository
	chapters  repository.ChapterRepository
	purchases repository.PurchaseRepository
	payments  PaymentGateway
	mail      mailer.Enqueuer
	events    *pubsub.Emitter
	activity  ActivityRecorder
	appURL    string
	logger    zerolog.Logger
}

func NewEnrollmentService(users repository.UserRepository, courses repository.CourseRepository, chapters repository.ChapterRepository, purchases repository.PurchaseRepository, payments PaymentGateway, mail mailer.Enqueuer, events *pubsub.Emitter, activity ActivityRecorder, appURL string, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		users:     users,
		courses:   courses,
		chapters:  chapters,
		purchases: purchases,
		payments:  payments,
		mail:      mail,
		events:    events,
		activity:  activity,
		appURL:    appURL,
		logger:    logger.With().Str("service", "EnrollmentService").Logger(),
	}
}

func (s *enrollmentService) Checkout(ctx context.Context, userID, courseID string) (*CheckoutResult, error) {
	c, err := loadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if !c.IsPublished {
		return nil, ErrCourseNotFound
	}
	existing, err := s.purchases.GetPurchase(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyPurchased
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if c.IsFree() {
		p := &model.Purchase{UserID: userID, CourseID: courseID, Amount: decimal.Zero}
		created, err := s.purchases.CreatePurchase(ctx, p)
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, ErrAlreadyPurchased
		}
		s.enrolled(ctx, u, c, p)
		return &CheckoutResult{Enrolled: true}, nil
	}

	url, err := s.payments.CreateCourseCheckout(ctx, u, c)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{URL: url}, nil
}

// HandleWebhook records the purchase for a completed checkout. Replays are no-ops.
func (s *enrollmentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	done, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if done == nil {
		return nil
	}

	c, err := loadCourse(ctx, s.courses, done.CourseID)
	if errors.Is(err, ErrCourseNotFound) {
		// Acknowledged without a purchase; the payment needs manual follow-up.
		s.logger.Error().Str("session_id", done.SessionID).Str("user_id", done.UserID).Str("course_id", done.CourseID).
			Str("amount", done.Amount.StringFixed(2)).Msg("Checkout completed for a deleted course")
		return nil
	}
	if err != nil {
		return err
	}
	sessionID := done.SessionID
	p := &model.Purchase{UserID: done.UserID, CourseID: done.CourseID, Amount: done.Amount, StripeSessionID: &sessionID}
	created, err := s.purchases.CreatePurchase(ctx, p)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	if !created {
		s.logger.Info().Str("session_id", sessionID).Msg("Purchase already recorded for checkout session")
		return nil
	}

	u, err := s.users.GetUserByID(ctx, done.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		s.logger.Warn().Str("user_id", done.UserID).Msg("Purchase recorded for unknown user")
		return nil
	}
	s.enrolled(ctx, u, c, p)
	return nil
}

// enrolled announces a new purchase. Failures are logged.
func (s *enrollmentService) enrolled(ctx context.Context, u *model.User, c *model.Course, p *model.Purchase) {
	s.events.Emit(ctx, pubsub.EventEnrollmentCreated, p.ID, map[string]string{
		"user_id":   u.ID,
		"course_id": c.ID,
		"amount":    p.Amount.StringFixed(2),
	})
	job := mailer.Job{
		Template: mailer.TemplateEnrollment,
		ToEmail:  u.Email,
		ToName:   u.Name,
		Data:     map[string]string{"course": c.Title, "course_id": c.ID, "url": s.appURL, "app": AppName},
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Str("course_id", c.ID).Msg("Failed to enqueue enrollment email")
	}
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	courses, err := s.purchases.ListEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Enrollment, 0, len(courses))
	for _, ec := range courses {
		out = append(out, Enrollment{EnrolledCourse: ec, Percentage: ProgressPercentage(ec.CompletedChapters, ec.ChapterCount)})
	}
	return out, nil
}

func (s *enrollmentService) SetProgress(ctx context.Context, userID, chapterID string, completed bool) (*model.UserProgress, error) {
	ch, err := s.chapters.GetChapterByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChapterNotFound
	}
	c, err := loadCourse(ctx, s.courses, ch.CourseID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		if !c.IsPublished || !ch.IsPublished {
			return nil, ErrChapterNotFound
		}
		if !ch.IsFree {
			p, err := s.purchases.GetPurchase(ctx, userID, c.ID)
			if err != nil {
				return nil, fmt.Errorf("fetch purchase: %w", err)
			}
			if p == nil {
				return nil, ErrForbidden
			}
		}
	}

	progress := &model.UserProgress{UserID: userID, ChapterID: chapterID, IsCompleted: completed}
	if err := s.purchases.UpsertProgress(ctx, progress); err != nil {
		return nil, err
	}
	if completed {
		s.activity.Record(ctx, userID, model.ActivityChapterCompleted, chapterID)
	}
	return progress, nil
}

func (s *enrollmentService) GetProgress(ctx context.Context, userID, courseID string) (float64, error) {
	if _, err := visibleCourse(ctx, s.courses, userID, courseID); err != nil {
		return 0, err
	}
	total, err := s.chapters.CountPublishedChapters(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("count published chapters: %w", err)
	}
	completed, err := s.purchases.CountCompletedChapters(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	return ProgressPercentage(completed, total), nil
}
