package main

import (
	"context"
	"flag"
	"os"
	"time"

	"learnhub/internal/config"
	"learnhub/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	retention           = 7 * 24 * time.Hour
	maxDeliveryAttempts = 5
)

// setup-pubsub creates the domain events topic, its dead-letter topic and a
// pull subscription for downstream consumers.
func main() {
	reset := flag.Bool("reset", false, "delete every topic and subscription first (emulator only)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("No .env file found, relying on system environment variables.\n")
	}
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}
	if cfg.GCPProjectID == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID is not set in the environment.")
	}

	// The client library picks up PUBSUB_EMULATOR_HOST on its own.
	emulator := os.Getenv("PUBSUB_EMULATOR_HOST") != ""
	var opts []option.ClientOption
	if !emulator && cfg.GCPCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Msgf("Failed to close pubsub client: %v", err)
		}
	}()

	if *reset {
		if !emulator {
			logger.Fatal().Msg("-reset is only allowed against the Pub/Sub emulator")
		}
		resetEmulator(ctx, client, logger)
	}

	topicID := cfg.PubSubEventsTopic
	dlqTopic := ensureTopic(ctx, client, logger, topicID+"-dlq")
	mainTopic := ensureTopic(ctx, client, logger, topicID)

	ensureSubscription(ctx, client, logger, topicID+"-sub", pubsub.SubscriptionConfig{
		Topic:            mainTopic,
		AckDeadline:      60 * time.Second,
		ExpirationPolicy: 31 * 24 * time.Hour,
		RetryPolicy: &pubsub.RetryPolicy{
			MinimumBackoff: 10 * time.Second,
			MaximumBackoff: 600 * time.Second,
		},
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dlqTopic.String(),
			MaxDeliveryAttempts: maxDeliveryAttempts,
		},
	})
	ensureSubscription(ctx, client, logger, topicID+"-dlq-sub", pubsub.SubscriptionConfig{
		Topic:            dlqTopic,
		AckDeadline:      60 * time.Second,
		ExpirationPolicy: 31 * 24 * time.Hour,
	})

	logger.Info().Str("topic", topicID).Msg("Pub/Sub setup complete")
}

// resetEmulator deletes every subscription and topic in the project.
func resetEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) {
	logger.Info().Msg("Deleting all existing resources for a clean local setup")

	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list subscriptions: %v", err)
		}
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("subscription", sub.ID()).Msg("Failed to delete subscription")
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list topics: %v", err)
		}
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("topic", topic.ID()).Msg("Failed to delete topic")
		}
	}
}

func ensureTopic(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID string) *pubsub.Topic {
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		logger.Fatal().Msgf("Failed to check if topic %s exists: %v", topicID, err)
	}
	if exists {
		logger.Info().Str("topic", topicID).Msg("Topic already exists")
		return topic
	}

	logger.Info().Str("topic", topicID).Dur("retention", retention).Msg("Creating topic")
	created, err := client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{RetentionDuration: retention})
	if err != nil {
		logger.Fatal().Msgf("Failed to create topic %s: %v", topicID, err)
	}
	return created
}

func ensureSubscription(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, subID string, cfg pubsub.SubscriptionConfig) {
	sub := client.Subscription(subID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		logger.Fatal().Msgf("Failed to check if subscription %s exists: %v", subID, err)
	}
	if !exists {
		logger.Info().Str("subscription", subID).Msg("Creating subscription")
		if _, err := client.CreateSubscription(ctx, subID, cfg); err != nil {
			logger.Fatal().Msgf("Failed to create subscription %s: %v", subID, err)
		}
		return
	}

	existing, err := sub.Config(ctx)
	if err != nil {
		logger.Fatal().Msgf("Failed to get config for subscription %s: %v", subID, err)
	}
	if existing.AckDeadline == cfg.AckDeadline && sameRetryPolicy(existing.RetryPolicy, cfg.RetryPolicy) {
		logger.Info().Str("subscription", subID).Msg("Subscription is up to date")
		return
	}

	logger.Info().Str("subscription", subID).Msg("Updating subscription")
	update := pubsub.SubscriptionConfigToUpdate{AckDeadline: cfg.AckDeadline, RetryPolicy: cfg.RetryPolicy}
	if _, err := sub.Update(ctx, update); err != nil {
		logger.Fatal().Msgf("Failed to update subscription %s: %v", subID, err)
	}
}

func sameRetryPolicy(a, b *pubsub.RetryPolicy) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.MinimumBackoff == b.MinimumBackoff && a.MaximumBackoff == b.MaximumBackoff
}
