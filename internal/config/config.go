package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	DBMaxConns         int32  `envconfig:"DB_MAX_CONNS" default:"25"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	// Auth settings
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"168h"`
	AppBaseURL  string        `envconfig:"APP_BASE_URL" default:"http://localhost:3000"`
	APIBaseURL  string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`

	// OAuth providers, a provider is enabled when its client ID is set
	GitHubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`

	// Stripe settings
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripeCurrency      string `envconfig:"STRIPE_CURRENCY" default:"usd"`

	// S3-compatible image storage
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"images"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	// ImagePublicBaseURL is the CDN origin serving uploaded objects
	ImagePublicBaseURL string `envconfig:"IMAGE_PUBLIC_BASE_URL"`

	// Email settings
	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	MailFromName   string `envconfig:"MAIL_FROM_NAME" default:"LearnHub"`
	MailFromEmail  string `envconfig:"MAIL_FROM_EMAIL" default:"no-reply@learnhub.dev"`

	// Email worker settings
	EmailQueueName           string `envconfig:"EMAIL_QUEUE_NAME" default:"email_queue"`
	EmailPollTimeoutSec      int    `envconfig:"EMAIL_POLL_TIMEOUT_SEC" default:"30"`
	EmailPollMaxMsg          int    `envconfig:"EMAIL_POLL_MAX_MSG" default:"1"`
	EmailMaxRetries          int    `envconfig:"EMAIL_MAX_RETRIES" default:"5"`
	EmailBackoffInitialSec   int    `envconfig:"EMAIL_BACKOFF_INITIAL_SEC" default:"1"`
	EmailBackoffMaxSec       int    `envconfig:"EMAIL_BACKOFF_MAX_SEC" default:"60"`
	EmailDeadLetterQueueName string `envconfig:"EMAIL_DEAD_LETTER_QUEUE_NAME" default:"email_queue_dlq"`

	// Pub/Sub settings, events are dropped when no project is configured
	GCPProjectID       string `envconfig:"GCP_PROJECT_ID"`
	GCPCredentialsFile string `envconfig:"GCP_CREDENTIALS_FILE"`
	PubSubEventsTopic  string `envconfig:"PUBSUB_EVENTS_TOPIC" default:"learnhub-events"`

	// Cache settings
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	ProfileCacheTTL time.Duration `envconfig:"PROFILE_CACHE_TTL" default:"2m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether debug-only routes and console logging are enabled.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
