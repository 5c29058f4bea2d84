// Package email drains the email queue and delivers each job through a mailer.Sender.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnhub/internal/mailer"
	"learnhub/internal/pgmq"
	"learnhub/internal/service"

	"github.com/rs/zerolog"
)

// Queue is the subset of the pgmq client the worker needs.
type Queue interface {
	ReadWithPoll(ctx context.Context, queue string, visibilitySec, timeoutSec, maxMessages int) ([]*pgmq.Message, error)
	Send(ctx context.Context, queue string, payload []byte) error
	Delete(ctx context.Context, queue string, msgIDs []int64) error
}

type Options struct {
	QueueName       string
	DeadLetterQueue string
	PollTimeoutSec  int
	MaxMessages     int
	MaxRetries      int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
}

type Worker struct {
	queue  Queue
	sender mailer.Sender
	dlq    service.DLQService
	opts   Options
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(queue Queue, sender mailer.Sender, dlq service.DLQService, opts Options, logger zerolog.Logger) *Worker {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.MaxMessages < 1 {
		opts.MaxMessages = 1
	}
	return &Worker{
		queue:  queue,
		sender: sender,
		dlq:    dlq,
		opts:   opts,
		logger: logger.With().Str("worker", "email").Str("queue", opts.QueueName).Logger(),
		sleep:  sleepContext,
	}
}

// Backoff returns the delay before retry number attempt (1-based), doubling
// from initial and capped at max.
func Backoff(attempt int, initial, max time.Duration) time.Duration {
	d := initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// visibilitySec keeps a message hidden for longer than one full retry cycle so
// another worker never picks it up mid-delivery.
func (w *Worker) visibilitySec() int {
	var total time.Duration
	for i := 1; i < w.opts.MaxRetries; i++ {
		total += Backoff(i, w.opts.BackoffInitial, w.opts.BackoffMax)
	}
	return int(total/time.Second) + 30
}

// Run polls the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("Starting email worker")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Shutting down email worker")
			return nil
		default:
		}

		msgs, err := w.queue.ReadWithPoll(ctx, w.opts.QueueName, w.visibilitySec(), w.opts.PollTimeoutSec, w.opts.MaxMessages)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("Error reading email queue")
			_ = w.sleep(ctx, time.Second)
			continue
		}
		for _, msg := range msgs {
			w.Process(ctx, msg)
		}
	}
}

// Process delivers one message, retrying with backoff, and dead-letters it once
// retries are exhausted or the payload cannot be rendered.
func (w *Worker) Process(ctx context.Context, msg *pgmq.Message) {
	log := w.logger.With().Int64("msg_id", msg.ID).Int("read_count", msg.ReadCount).Logger()

	// A message read this often already went through full retry cycles on
	// workers that died before deleting it.
	if msg.ReadCount > w.opts.MaxRetries {
		w.deadLetter(ctx, msg, fmt.Errorf("read %d times without completing", msg.ReadCount), log)
		return
	}

	var job mailer.Job
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		w.deadLetter(ctx, msg, fmt.Errorf("decode job: %w", err), log)
		return
	}
	rendered, err := mailer.Render(job)
	if err != nil {
		w.deadLetter(ctx, msg, err, log)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= w.opts.MaxRetries; attempt++ {
		if lastErr = w.sender.Send(ctx, rendered); lastErr == nil {
			break
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Str("template", job.Template).Msg("Email delivery failed")
		if attempt == w.opts.MaxRetries {
			break
		}
		if err := w.sleep(ctx, Backoff(attempt, w.opts.BackoffInitial, w.opts.BackoffMax)); err != nil {
			// Shutting down; the message becomes visible again after its timeout.
			return
		}
	}
	if lastErr != nil {
		w.deadLetter(ctx, msg, lastErr, log)
		return
	}

	if err := w.queue.Delete(ctx, w.opts.QueueName, []int64{msg.ID}); err != nil {
		log.Error().Err(err).Msg("Error deleting email message")
		return
	}
	log.Info().Str("template", job.Template).Msg("Email sent")
}

// deadLetter moves the raw payload to the dead-letter queue, records it for
// inspection and removes the original.
func (w *Worker) deadLetter(ctx context.Context, msg *pgmq.Message, cause error, log zerolog.Logger) {
	log.Error().Err(cause).Msg("Moving email message to dead-letter queue")

	if err := w.queue.Send(ctx, w.opts.DeadLetterQueue, msg.Data); err != nil {
		log.Error().Err(err).Msg("Error sending to dead-letter queue")
		return
	}
	if w.dlq != nil {
		if err := w.dlq.Record(ctx, w.opts.QueueName, msg.ID, msg.Data, cause); err != nil {
			log.Error().Err(err).Msg("Error recording dead-letter message")
		}
	}
	if err := w.queue.Delete(ctx, w.opts.QueueName, []int64{msg.ID}); err != nil {
		log.Error().Err(err).Msg("Error deleting dead-lettered message")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
