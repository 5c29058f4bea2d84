package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"learnhub/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// ProviderProfile is the identity returned by an OAuth provider.
type ProviderProfile struct {
	AccountID     string
	Email         string
	EmailVerified bool
	Name          string
	ImageURL      string
}

var githubEmailsURL = "https://api.github.com/user/emails"

// OAuthProvider runs the authorization-code flow against one identity provider.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ProviderProfile, error)
}

type oauthProvider struct {
	name       string
	conf       *oauth2.Config
	profileURL string
	decode     func(ctx context.Context, client *http.Client, body []byte) (*ProviderProfile, error)
}

// NewOAuthProviders builds the providers that have credentials configured.
func NewOAuthProviders(cfg *config.Config) map[string]OAuthProvider {
	providers := make(map[string]OAuthProvider)
	callback := func(name string) string {
		return strings.TrimRight(cfg.APIBaseURL, "/") + "/v1/auth/oauth/" + name + "/callback"
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers[ProviderGitHub] = &oauthProvider{
			name: ProviderGitHub,
			conf: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  callback(ProviderGitHub),
				Scopes:       []string{"read:user", "user:email"},
			},
			profileURL: "https://api.github.com/user",
			decode:     decodeGitHubProfile,
		}
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers[ProviderGoogle] = &oauthProvider{
			name: ProviderGoogle,
			conf: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  callback(ProviderGoogle),
				Scopes:       []string{"openid", "email", "profile"},
			},
			profileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
			decode:     decodeGoogleProfile,
		}
	}
	return providers
}

// ProviderNames returns the configured provider names in sorted order.
func ProviderNames(providers map[string]OAuthProvider) []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *oauthProvider) Name() string { return p.name }

func (p *oauthProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *oauthProvider) Exchange(ctx context.Context, code string) (*ProviderProfile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange %s code: %w", p.name, err)
	}
	client := p.conf.Client(ctx, tok)
	body, err := getJSON(ctx, client, p.profileURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s profile: %w", p.name, err)
	}
	profile, err := p.decode(ctx, client, body)
	if err != nil {
		return nil, err
	}
	if profile.AccountID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%s profile is missing id or email", p.name)
	}
	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeGitHubProfile(ctx context.Context, client *http.Client, body []byte) (*ProviderProfile, error) {
	var u struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode github profile: %w", err)
	}
	profile := &ProviderProfile{
		AccountID: fmt.Sprintf("%d", u.ID),
		Name:      u.Name,
		ImageURL:  u.AvatarURL,
	}
	if profile.Name == "" {
		profile.Name = u.Login
	}

	// The public profile email carries no verification flag; only the emails
	// endpoint does.
	raw, err := getJSON(ctx, client, githubEmailsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch github emails: %w", err)
	}
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(raw, &emails); err != nil {
		return nil, fmt.Errorf("decode github emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			profile.Email = e.Email
			profile.EmailVerified = true
			return profile, nil
		}
	}
	return nil, errors.New("github account has no verified primary email")
}

func decodeGoogleProfile(_ context.Context, _ *http.Client, body []byte) (*ProviderProfile, error) {
	var u struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode google profile: %w", err)
	}
	return &ProviderProfile{
		AccountID:     u.ID,
		Email:         u.Email,
		EmailVerified: u.VerifiedEmail,
		Name:          u.Name,
		ImageURL:      u.Picture,
	}, nil
}
