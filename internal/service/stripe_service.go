package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidSignature is returned for webhooks that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutCompleted is a paid Stripe Checkout session for a course.
type CheckoutCompleted struct {
	SessionID string
	UserID    string
	CourseID  string
	Amount    decimal.Decimal
}

// PaymentGateway creates checkout sessions and verifies their webhooks.
type PaymentGateway interface {
	CreateCourseCheckout(ctx context.Context, user *model.User, course *model.Course) (string, error)
	// ParseWebhook returns nil for events that do not complete a purchase.
	ParseWebhook(payload []byte, signature string) (*CheckoutCompleted, error)
}

// StripeOptions configures the Stripe gateway.
type StripeOptions struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	AppBaseURL    string
}

// StripeService manages Stripe integration
type StripeService struct {
	opts     StripeOptions
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewStripeService initializes Stripe key and returns service with a scoped logger
func NewStripeService(opts StripeOptions, userRepo repository.UserRepository, logger zerolog.Logger) *StripeService {
	stripe.Key = opts.SecretKey
	if opts.Currency == "" {
		opts.Currency = string(stripe.CurrencyUSD)
	}
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{opts: opts, userRepo: userRepo, logger: lg}
}

// ToCents converts a decimal price to the smallest currency unit.
func ToCents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// GetOrCreateCustomer ensures a Stripe Customer exists for a user
func (s *StripeService) GetOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Name:     stripe.String(user.Name),
		Metadata: map[string]string{"user_id": user.ID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeCustomerID(ctx, user.ID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	user.StripeCustomerID = &cust.ID
	return cust.ID, nil
}

// CreateCourseCheckout creates a one-off payment session for a course and returns its URL.
func (s *StripeService) CreateCourseCheckout(ctx context.Context, user *model.User, course *model.Course) (string, error) {
	customerID, err := s.GetOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(course.Title)}
	if desc := Excerpt(course.Description, ExcerptLength); desc != "" {
		product.Description = stripe.String(desc)
	}
	courseURL := strings.TrimRight(s.opts.AppBaseURL, "/") + "/courses/" + course.ID
	metadata := map[string]string{"user_id": user.ID, "course_id": course.ID}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.opts.Currency),
				UnitAmount:  stripe.Int64(ToCents(course.Price.Decimal)),
				ProductData: product,
			},
		}},
		SuccessURL: stripe.String(courseURL + "?success=1"),
		CancelURL:  stripe.String(courseURL + "?canceled=1"),
		Metadata:   metadata,
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", course.ID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ParseWebhook verifies the signature and extracts completed course purchases.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*CheckoutCompleted, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.opts.WebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("Ignoring Stripe webhook event")
		return nil, nil
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, invalidInput("invalid checkout.session data")
	}
	userID, courseID := cs.Metadata["user_id"], cs.Metadata["course_id"]
	if userID == "" || courseID == "" {
		return nil, invalidInput("checkout session %s is missing user_id or course_id metadata", cs.ID)
	}
	return &CheckoutCompleted{
		SessionID: cs.ID,
		UserID:    userID,
		CourseID:  courseID,
		Amount:    decimal.New(cs.AmountTotal, -2),
	}, nil
}
