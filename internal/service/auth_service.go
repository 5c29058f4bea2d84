package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learnhub/internal/mailer"
	"learnhub/internal/model"
	"learnhub/internal/pubsub"
	"learnhub/internal/repository"
	"learnhub/internal/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	AppName  = "LearnHub"
	stateTTL = 10 * time.Minute
)

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService handles password and OAuth sign-in.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	OAuthLoginURL(provider string) (string, error)
	OAuthCallback(ctx context.Context, provider, code, state string) (*AuthResult, error)
	Providers() []string
}

type authService struct {
	users     repository.UserRepository
	providers map[string]OAuthProvider
	mail      mailer.Enqueuer
	events    *pubsub.Emitter
	secret    string
	ttl       time.Duration
	appURL    string
	now       func() time.Time
	logger    zerolog.Logger
}

// AuthOptions carries the token settings for NewAuthService.
type AuthOptions struct {
	JWTSecret  string
	TokenTTL   time.Duration
	AppBaseURL string
}

func NewAuthService(users repository.UserRepository, providers map[string]OAuthProvider, mail mailer.Enqueuer, events *pubsub.Emitter, opts AuthOptions, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		providers: providers,
		mail:      mail,
		events:    events,
		secret:    opts.JWTSecret,
		ttl:       opts.TokenTTL,
		appURL:    opts.AppBaseURL,
		now:       time.Now,
		logger:    logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashed := string(hash)
	u := &model.User{Name: strings.TrimSpace(name), Email: email, PasswordHash: &hashed, Role: model.RoleStudent}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.onboard(ctx, u)
	return s.issue(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || u.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *authService) Providers() []string {
	return ProviderNames(s.providers)
}

func (s *authService) OAuthLoginURL(provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", ErrProviderNotFound
	}
	state, err := util.IssueStateToken(provider, uuid.NewString(), s.secret, stateTTL, s.now())
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

func (s *authService) OAuthCallback(ctx context.Context, provider, code, state string) (*AuthResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, ErrProviderNotFound
	}
	if err := util.ValidateStateToken(state, provider, s.secret); err != nil {
		s.logger.Warn().Err(err).Str("provider", provider).Msg("Rejected OAuth callback state")
		return nil, fmt.Errorf("oauth state: %w", ErrUnauthorized)
	}
	if code == "" {
		return nil, invalidInput("missing code")
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", provider).Msg("OAuth exchange failed")
		return nil, fmt.Errorf("oauth exchange: %w", ErrUnauthorized)
	}

	u, err := s.upsertOAuthUser(ctx, provider, profile)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// upsertOAuthUser resolves the linked account, or links it to the user with the
// same email, or creates a new user. Linking and creating both require an email
// the provider has verified.
func (s *authService) upsertOAuthUser(ctx context.Context, provider string, profile *ProviderProfile) (*model.User, error) {
	acct, err := s.users.GetAccount(ctx, provider, profile.AccountID)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if acct != nil {
		u, err := s.users.GetUserByID(ctx, acct.UserID)
		if err != nil {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		if u == nil {
			return nil, ErrUserNotFound
		}
		return u, nil
	}

	if !profile.EmailVerified {
		s.logger.Warn().Str("provider", provider).Str("account_id", profile.AccountID).Msg("Rejected OAuth sign-in with unverified email")
		return nil, ErrEmailNotVerified
	}
	email := strings.ToLower(profile.Email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	created := false
	if u == nil {
		u = &model.User{Name: profile.Name, Email: email, ImageURL: profile.ImageURL, Role: model.RoleStudent}
		if err := s.users.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		created = true
	}

	link := &model.Account{UserID: u.ID, Provider: provider, ProviderAccountID: profile.AccountID}
	if err := s.users.CreateAccount(ctx, link); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("link account: %w", err)
	}
	if created {
		s.onboard(ctx, u)
	}
	return u, nil
}

// onboard sends the welcome email and the registration event. Failures are logged.
func (s *authService) onboard(ctx context.Context, u *model.User) {
	job := mailer.Job{
		Template: mailer.TemplateWelcome,
		ToEmail:  u.Email,
		ToName:   u.Name,
		Data:     map[string]string{"app": AppName, "url": s.appURL},
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to enqueue welcome email")
	}
	s.events.Emit(ctx, pubsub.EventUserRegistered, u.ID, nil)
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	now := s.now()
	token, err := util.IssueJWT(u.ID, u.Email, u.Role, s.secret, s.ttl, now)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: now.Add(s.ttl), User: u}, nil
}
