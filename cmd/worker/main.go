package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/logger"
	"learnhub/internal/mailer"
	"learnhub/internal/pgmq"
	"learnhub/internal/repository"
	"learnhub/internal/service"
	"learnhub/internal/worker/email"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("Warning: no .env file found\n")
	}
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if cfg.SendGridAPIKey == "" {
		logger.Fatal().Msg("SENDGRID_API_KEY is required for the email worker")
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("Database connection established")

	w := email.New(
		pgmq.New(pool),
		mailer.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromEmail),
		service.NewDLQService(repository.NewDLQRepository(pool)),
		email.Options{
			QueueName:       cfg.EmailQueueName,
			DeadLetterQueue: cfg.EmailDeadLetterQueueName,
			PollTimeoutSec:  cfg.EmailPollTimeoutSec,
			MaxMessages:     cfg.EmailPollMaxMsg,
			MaxRetries:      cfg.EmailMaxRetries,
			BackoffInitial:  time.Duration(cfg.EmailBackoffInitialSec) * time.Second,
			BackoffMax:      time.Duration(cfg.EmailBackoffMaxSec) * time.Second,
		},
		logger,
	)
	if err := w.Run(ctx); err != nil {
		logger.Fatal().Msgf("Email worker failed: %v", err)
	}
	logger.Info().Msg("Email worker stopped gracefully")
}
