package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"learnhub/internal/mailer"
	"learnhub/internal/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeProvider struct {
	profile *ProviderProfile
}

func (p *fakeProvider) Name() string { return "github" }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(context.Context, string) (*ProviderProfile, error) {
	return p.profile, nil
}

func newAuthFixture() (*fakeUserRepo, *fakeEnqueuer, *fakeProvider, AuthService) {
	users := newFakeUserRepo()
	mail := &fakeEnqueuer{}
	provider := &fakeProvider{profile: &ProviderProfile{AccountID: "42", Email: "Octo@Example.com", EmailVerified: true, Name: "Octo"}}
	svc := NewAuthService(users, map[string]OAuthProvider{ProviderGitHub: provider}, mail, nil,
		AuthOptions{JWTSecret: testSecret, TokenTTL: time.Hour, AppBaseURL: "https://app.test"}, zerolog.Nop())
	return users, mail, provider, svc
}

func TestRegisterAndLogin(t *testing.T) {
	_, mail, _, svc := newAuthFixture()
	ctx := context.Background()

	res, err := svc.Register(ctx, "Ada", "Ada@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	require.NotNil(t, res.User.PasswordHash)
	assert.NotEqual(t, "correct horse", *res.User.PasswordHash)

	claims, err := util.ValidateJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)

	require.Len(t, mail.jobs, 1)
	assert.Equal(t, mailer.TemplateWelcome, mail.jobs[0].Template)

	_, err = svc.Register(ctx, "Ada again", "ada@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err = svc.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestOAuthLoginURLUnknownProvider(t *testing.T) {
	_, _, _, svc := newAuthFixture()
	_, err := svc.OAuthLoginURL("myspace")
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.Equal(t, []string{"github"}, svc.Providers())
}

func TestOAuthCallbackCreatesThenReusesUser(t *testing.T) {
	users, mail, _, svc := newAuthFixture()
	ctx := context.Background()

	loginURL, err := svc.OAuthLoginURL(ProviderGitHub)
	require.NoError(t, err)
	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")

	first, err := svc.OAuthCallback(ctx, ProviderGitHub, "code", state)
	require.NoError(t, err)
	assert.Equal(t, "octo@example.com", first.User.Email)
	assert.Len(t, users.accounts, 1)
	assert.Len(t, mail.jobs, 1)

	second, err := svc.OAuthCallback(ctx, ProviderGitHub, "code", state)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, users.users, 1)
	assert.Len(t, mail.jobs, 1)
}

func TestOAuthCallbackRejectsBadState(t *testing.T) {
	_, _, _, svc := newAuthFixture()
	_, err := svc.OAuthCallback(context.Background(), ProviderGitHub, "code", "forged")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// A session token is not a valid state.
	session, err := util.IssueJWT("u1", "a@b.c", "student", testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = svc.OAuthCallback(context.Background(), ProviderGitHub, "code", session)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func oauthState(t *testing.T, svc AuthService) string {
	t.Helper()
	loginURL, err := svc.OAuthLoginURL(ProviderGitHub)
	require.NoError(t, err)
	parsed, err := url.Parse(loginURL)
	require.NoError(t, err)
	return parsed.Query().Get("state")
}

func TestOAuthCallbackLinksVerifiedEmailToExistingUser(t *testing.T) {
	users, _, provider, svc := newAuthFixture()
	ctx := context.Background()
	registered, err := svc.Register(ctx, "Octo", "octo@example.com", "correct horse")
	require.NoError(t, err)

	res, err := svc.OAuthCallback(ctx, ProviderGitHub, "code", oauthState(t, svc))
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)
	require.Contains(t, users.accounts, ProviderGitHub+"/"+provider.profile.AccountID)
	assert.Equal(t, registered.User.ID, users.accounts[ProviderGitHub+"/42"].UserID)
}

func TestOAuthCallbackRejectsUnverifiedEmail(t *testing.T) {
	users, _, provider, svc := newAuthFixture()
	ctx := context.Background()
	_, err := svc.Register(ctx, "Octo", "octo@example.com", "correct horse")
	require.NoError(t, err)
	provider.profile.EmailVerified = false

	_, err = svc.OAuthCallback(ctx, ProviderGitHub, "code", oauthState(t, svc))
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, users.accounts)

	provider.profile.Email = "fresh@example.com"
	_, err = svc.OAuthCallback(ctx, ProviderGitHub, "code", oauthState(t, svc))
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Len(t, users.users, 1)
}
